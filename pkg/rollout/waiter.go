package rollout

import (
	"context"
	"fmt"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/watch"

	"github.com/opsmith/containerize-mcp/pkg/k8s"
)

// WaitForDeployment watches a deployment until every desired replica is
// ready or the context expires.
func WaitForDeployment(ctx context.Context, clients *k8s.Clients, namespace, name string, timeout time.Duration) (*Status, error) {
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()

	watcher, err := clients.Clientset.AppsV1().Deployments(namespace).Watch(waitCtx, metav1.ListOptions{
		FieldSelector: fmt.Sprintf("metadata.name=%s", name),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to watch deployment %s/%s: %w", namespace, name, err)
	}
	defer watcher.Stop()

	var last *appsv1.Deployment
	for {
		select {
		case <-waitCtx.Done():
			st := &Status{Ready: false, Message: "rollout timed out", Duration: time.Since(start)}
			if last != nil {
				st.DesiredReplicas = desired(last)
				st.ReadyReplicas = last.Status.ReadyReplicas
			}
			return st, nil
		case event, ok := <-watcher.ResultChan():
			if !ok {
				return nil, fmt.Errorf("deployment watch channel closed")
			}
			if event.Type == watch.Deleted {
				return &Status{Ready: false, Message: "deployment was deleted", Duration: time.Since(start)}, nil
			}
			dep, ok := event.Object.(*appsv1.Deployment)
			if !ok {
				continue
			}
			last = dep
			if dep.Status.ObservedGeneration >= dep.Generation &&
				dep.Status.ReadyReplicas == desired(dep) &&
				dep.Status.UpdatedReplicas == desired(dep) {
				return &Status{
					Ready:           true,
					DesiredReplicas: desired(dep),
					ReadyReplicas:   dep.Status.ReadyReplicas,
					Duration:        time.Since(start),
				}, nil
			}
		}
	}
}

func desired(dep *appsv1.Deployment) int32 {
	if dep.Spec.Replicas == nil {
		return 1
	}
	return *dep.Spec.Replicas
}

// PodIssues lists waiting-container reasons for pods matching the label
// selector, surfacing crash loops and image pull failures.
func PodIssues(ctx context.Context, clients *k8s.Clients, namespace, selector string) ([]string, error) {
	pods, err := clients.Clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{LabelSelector: selector})
	if err != nil {
		return nil, fmt.Errorf("failed to list pods: %w", err)
	}

	var issues []string
	for _, pod := range pods.Items {
		for _, cs := range pod.Status.ContainerStatuses {
			if cs.State.Waiting != nil && cs.State.Waiting.Reason != "" {
				issues = append(issues, fmt.Sprintf("%s/%s: %s (%s)", pod.Name, cs.Name, cs.State.Waiting.Reason, cs.State.Waiting.Message))
			}
		}
	}
	return issues, nil
}
