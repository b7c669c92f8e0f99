package rollout

import (
	"context"
	"log/slog"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	// checkPodTTL is the maximum age of a check pod before it is considered orphaned.
	checkPodTTL = 5 * time.Minute
	// cleanupInterval is how often the cleanup loop runs.
	cleanupInterval = 60 * time.Second
)

// cleanupLoop periodically removes orphaned check pods.
func (v *Verifier) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-v.stopCh:
			return
		case <-ticker.C:
			v.cleanupOrphans(ctx)
		}
	}
}

// cleanupOrphans deletes check pods that have exceeded their TTL.
func (v *Verifier) cleanupOrphans(ctx context.Context) {
	pods, err := v.clients.Clientset.CoreV1().Pods(v.namespace).List(ctx, metav1.ListOptions{
		LabelSelector: LabelManagedBy + "=" + LabelManagedByValue,
	})
	if err != nil {
		slog.Debug("verify: cleanup failed to list pods", "namespace", v.namespace, "error", err)
		return
	}

	now := time.Now()
	cleaned := 0

	for _, pod := range pods.Items {
		createdAtStr, ok := pod.Annotations[AnnotationCreatedAt]
		if !ok {
			continue
		}
		createdAt, err := time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			continue
		}
		if now.Sub(createdAt) > checkPodTTL {
			if err := v.clients.Clientset.CoreV1().Pods(v.namespace).Delete(ctx, pod.Name, metav1.DeleteOptions{}); err != nil {
				slog.Warn("verify: cleanup failed to delete pod", "pod", pod.Name, "error", err)
				continue
			}
			cleaned++
		}
	}

	if cleaned > 0 {
		slog.Info("verify: cleaned up orphaned check pods", "count", cleaned, "namespace", v.namespace)
	}
}
