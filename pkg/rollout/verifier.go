package rollout

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/watch"

	"github.com/opsmith/containerize-mcp/pkg/k8s"
	"github.com/opsmith/containerize-mcp/pkg/types"
)

// podCounter provides unique pod names across concurrent checks.
var podCounter atomic.Int64

// Verifier runs in-cluster connectivity checks against deployed
// services by creating short-lived check pods.
type Verifier struct {
	clients   *k8s.Clients
	namespace string

	mu       sync.Mutex
	running  int
	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewVerifier creates a verifier and starts the orphan cleanup loop.
func NewVerifier(ctx context.Context, clients *k8s.Clients, namespace string) *Verifier {
	v := &Verifier{
		clients:   clients,
		namespace: namespace,
		stopCh:    make(chan struct{}),
	}
	v.cleanupOrphans(ctx)
	go v.cleanupLoop(ctx)
	return v
}

// Execute creates a check pod, waits for completion, and returns the
// result. The pod is always deleted afterwards.
func (v *Verifier) Execute(ctx context.Context, req CheckRequest) (*CheckResult, error) {
	if err := v.acquireSlot(); err != nil {
		return nil, err
	}
	defer v.releaseSlot()

	if req.Timeout == 0 {
		req.Timeout = 30 * time.Second
	}
	checkCtx, cancel := context.WithTimeout(ctx, req.Timeout)
	defer cancel()

	ns := req.Namespace
	if ns == "" {
		ns = v.namespace
	}

	start := time.Now()

	podName, err := v.createCheckPod(checkCtx, ns, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create check pod: %w", err)
	}

	defer func() {
		deleteCtx, deleteCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer deleteCancel()
		if delErr := v.clients.Clientset.CoreV1().Pods(ns).Delete(deleteCtx, podName, metav1.DeleteOptions{}); delErr != nil {
			slog.Warn("verify: failed to delete check pod", "pod", podName, "namespace", ns, "error", delErr)
		}
	}()

	result, err := v.waitForPod(checkCtx, ns, podName)
	if err != nil {
		if checkCtx.Err() != nil {
			return &CheckResult{
				Success:  false,
				Error:    "connectivity check timed out",
				Duration: time.Since(start),
			}, &types.MCPError{
				Code:    types.ErrCodeRolloutTimeout,
				Message: fmt.Sprintf("connectivity check timed out after %s", req.Timeout),
			}
		}
		return nil, fmt.Errorf("connectivity check failed: %w", err)
	}

	result.Duration = time.Since(start)
	return result, nil
}

func (v *Verifier) acquireSlot() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.running >= maxConcurrentChecks {
		return &types.MCPError{
			Code:    types.ErrCodeInternalError,
			Message: fmt.Sprintf("concurrent check limit reached (%d/%d)", v.running, maxConcurrentChecks),
		}
	}
	v.running++
	return nil
}

func (v *Verifier) releaseSlot() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.running--
}

// Stop signals the cleanup goroutine to exit.
func (v *Verifier) Stop() {
	v.stopOnce.Do(func() {
		close(v.stopCh)
	})
}

func (v *Verifier) createCheckPod(ctx context.Context, namespace string, req CheckRequest) (string, error) {
	podName := fmt.Sprintf("verify-%s-%d-%d", req.Service, time.Now().Unix(), podCounter.Add(1))
	url := fmt.Sprintf("http://%s.%s.svc:%d%s", req.Service, namespace, req.Port, req.Path)

	falseVal := false
	trueVal := true
	var runAsUser int64 = 1000

	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:      podName,
			Namespace: namespace,
			Labels: map[string]string{
				LabelManagedBy: LabelManagedByValue,
			},
			Annotations: map[string]string{
				AnnotationCreatedAt: time.Now().UTC().Format(time.RFC3339),
			},
		},
		Spec: corev1.PodSpec{
			RestartPolicy: corev1.RestartPolicyNever,
			Containers: []corev1.Container{
				{
					Name:    "check",
					Image:   checkImage,
					Command: []string{"wget", "-q", "-T", "10", "-O", "-", url},
					Resources: corev1.ResourceRequirements{
						Limits: corev1.ResourceList{
							corev1.ResourceCPU:    resource.MustParse("100m"),
							corev1.ResourceMemory: resource.MustParse("64Mi"),
						},
						Requests: corev1.ResourceList{
							corev1.ResourceCPU:    resource.MustParse("50m"),
							corev1.ResourceMemory: resource.MustParse("32Mi"),
						},
					},
					SecurityContext: &corev1.SecurityContext{
						RunAsNonRoot:             &trueVal,
						RunAsUser:                &runAsUser,
						AllowPrivilegeEscalation: &falseVal,
						ReadOnlyRootFilesystem:   &trueVal,
						Capabilities: &corev1.Capabilities{
							Drop: []corev1.Capability{"ALL"},
						},
						SeccompProfile: &corev1.SeccompProfile{
							Type: corev1.SeccompProfileTypeRuntimeDefault,
						},
					},
				},
			},
		},
	}

	created, err := v.clients.Clientset.CoreV1().Pods(namespace).Create(ctx, pod, metav1.CreateOptions{})
	if err != nil {
		return "", err
	}
	slog.Debug("verify: created check pod", "pod", created.Name, "namespace", namespace, "url", url)
	return created.Name, nil
}

// waitForPod watches the pod until it reaches a terminal state and
// collects its logs.
func (v *Verifier) waitForPod(ctx context.Context, namespace, podName string) (*CheckResult, error) {
	watcher, err := v.clients.Clientset.CoreV1().Pods(namespace).Watch(ctx, metav1.ListOptions{
		FieldSelector: fmt.Sprintf("metadata.name=%s", podName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to watch pod %s: %w", podName, err)
	}
	defer watcher.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case event, ok := <-watcher.ResultChan():
			if !ok {
				return nil, fmt.Errorf("pod watch channel closed")
			}
			if event.Type == watch.Deleted {
				return &CheckResult{Success: false, Error: "pod was deleted unexpectedly"}, nil
			}
			pod, ok := event.Object.(*corev1.Pod)
			if !ok {
				continue
			}
			switch pod.Status.Phase {
			case corev1.PodSucceeded:
				return &CheckResult{
					Success:  true,
					Output:   v.collectLogs(ctx, namespace, podName),
					ExitCode: 0,
				}, nil
			case corev1.PodFailed:
				exitCode := 1
				if len(pod.Status.ContainerStatuses) > 0 {
					if term := pod.Status.ContainerStatuses[0].State.Terminated; term != nil {
						exitCode = int(term.ExitCode)
					}
				}
				return &CheckResult{
					Success:  false,
					Output:   v.collectLogs(ctx, namespace, podName),
					ExitCode: exitCode,
					Error:    "check pod failed",
				}, nil
			}
		}
	}
}

func (v *Verifier) collectLogs(ctx context.Context, namespace, podName string) string {
	req := v.clients.Clientset.CoreV1().Pods(namespace).GetLogs(podName, &corev1.PodLogOptions{})
	stream, err := req.Stream(ctx)
	if err != nil {
		slog.Debug("verify: failed to stream logs", "pod", podName, "error", err)
		return ""
	}
	defer stream.Close()
	data, err := io.ReadAll(stream)
	if err != nil {
		return ""
	}
	return string(data)
}
