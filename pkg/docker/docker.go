package docker

import (
	"archive/tar"
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/docker/docker/api/types/build"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/registry"
	"github.com/docker/docker/client"
)

// Client wraps the Docker engine API over a unix socket.
type Client struct {
	api *client.Client
}

// New connects to the Docker daemon on the given socket path.
func New(socketPath string) (*Client, error) {
	api, err := client.NewClientWithOpts(
		client.WithHost("unix://"+socketPath),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating Docker client: %w", err)
	}
	return &Client{api: api}, nil
}

// Ping checks that the daemon answers on the socket.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.Ping(ctx); err != nil {
		return fmt.Errorf("Docker daemon unreachable: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.api.Close()
}

// buildLine is one JSON message from the daemon's build stream.
type buildLine struct {
	Stream string `json:"stream"`
	Error  string `json:"error"`
}

// BuildImage tars contextDir, submits it to the daemon, and streams the
// build output. Returns the collected build log.
func (c *Client) BuildImage(ctx context.Context, contextDir, dockerfile, tag string) (string, error) {
	buildCtx, err := tarDirectory(contextDir)
	if err != nil {
		return "", fmt.Errorf("packing build context: %w", err)
	}
	defer buildCtx.Close()

	resp, err := c.api.ImageBuild(ctx, buildCtx, build.ImageBuildOptions{
		Tags:       []string{tag},
		Dockerfile: dockerfile,
		Remove:     true,
	})
	if err != nil {
		return "", fmt.Errorf("image build failed: %w", err)
	}
	defer resp.Body.Close()

	var log strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var line buildLine
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			continue
		}
		if line.Error != "" {
			return log.String(), fmt.Errorf("image build failed: %s", line.Error)
		}
		log.WriteString(line.Stream)
	}
	if err := scanner.Err(); err != nil {
		return log.String(), fmt.Errorf("reading build output: %w", err)
	}
	return log.String(), nil
}

// TagImage adds target as an additional reference for source.
func (c *Client) TagImage(ctx context.Context, source, target string) error {
	if err := c.api.ImageTag(ctx, source, target); err != nil {
		return fmt.Errorf("tagging image %s as %s: %w", source, target, err)
	}
	return nil
}

// PushImage pushes ref to its registry using ambient credentials.
func (c *Client) PushImage(ctx context.Context, ref string) error {
	auth, err := registry.EncodeAuthConfig(registry.AuthConfig{})
	if err != nil {
		return fmt.Errorf("encoding registry auth: %w", err)
	}
	out, err := c.api.ImagePush(ctx, ref, image.PushOptions{RegistryAuth: auth})
	if err != nil {
		return fmt.Errorf("pushing image %s: %w", ref, err)
	}
	defer out.Close()
	if _, err := io.Copy(io.Discard, out); err != nil {
		return fmt.Errorf("reading push output: %w", err)
	}
	return nil
}

// ImageInfo is the subset of image configuration the policy checks need.
type ImageInfo struct {
	User         string
	SizeBytes    int64
	ExposedPorts []string
	Labels       map[string]string
}

// InspectImage fetches ref's configuration from the daemon.
func (c *Client) InspectImage(ctx context.Context, ref string) (*ImageInfo, error) {
	inspect, _, err := c.api.ImageInspectWithRaw(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("inspecting image %s: %w", ref, err)
	}

	info := &ImageInfo{SizeBytes: inspect.Size}
	if inspect.Config != nil {
		info.User = inspect.Config.User
		info.Labels = inspect.Config.Labels
		for port := range inspect.Config.ExposedPorts {
			info.ExposedPorts = append(info.ExposedPorts, string(port))
		}
	}
	return info, nil
}

// SocketAccessible reports whether the socket path exists.
func SocketAccessible(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// tarDirectory builds an in-memory-free tar stream of dir via a pipe.
func tarDirectory(dir string) (io.ReadCloser, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, err
	}

	pr, pw := io.Pipe()
	go func() {
		tw := tar.NewWriter(pw)
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			if rel == "." {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			hdr, err := tar.FileInfoHeader(info, "")
			if err != nil {
				return err
			}
			hdr.Name = filepath.ToSlash(rel)
			if err := tw.WriteHeader(hdr); err != nil {
				return err
			}
			if !info.Mode().IsRegular() {
				return nil
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()
			_, err = io.Copy(tw, f)
			return err
		})
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := tw.Close(); err != nil {
			pw.CloseWithError(err)
			return
		}
		pw.Close()
	}()
	return pr, nil
}
