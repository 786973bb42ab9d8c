package ytdlp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// DefaultOutputTemplate names downloads after the media title.
const DefaultOutputTemplate = "%(title)s.%(ext)s"

const terminateGrace = 5 * time.Second

// Request describes a single download invocation.
type Request struct {
	URL         string
	Format      string
	CookiesPath string
	OutputDir   string
}

// Process is a started download the caller can wait on or tear down.
type Process interface {
	Wait() error
	Terminate()
}

// Executor abstracts command execution for testability. Stdout and stderr
// lines are delivered through separate callbacks, each invoked from a single
// goroutine.
type Executor interface {
	Start(ctx context.Context, spec CommandSpec, onStdout, onStderr func(string)) (Process, error)
}

// CommandSpec is the fully resolved command an executor launches.
type CommandSpec struct {
	Binary string
	Args   []string
	Dir    string
	Env    []string
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// Client wraps yt-dlp CLI interactions.
type Client struct {
	binary       string
	ffmpegPath   string
	caBundle     string
	titleTimeout time.Duration
	exec         Executor
}

// New constructs a yt-dlp client.
func New(binary, ffmpegPath, caBundle string, titleTimeout time.Duration, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	client := &Client{
		binary:       binary,
		ffmpegPath:   ffmpegPath,
		caBundle:     caBundle,
		titleTimeout: titleTimeout,
		exec:         commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Start launches yt-dlp for the request. Progress lines are parsed and
// forwarded to onProgress; every output line goes to onLine, which may be
// invoked concurrently from the stdout and stderr readers and must be safe
// for that. The returned process outlives the call so the owner can cancel
// it mid-flight.
func (c *Client) Start(ctx context.Context, req Request, onProgress func(ProgressUpdate), onLine func(string)) (Process, error) {
	if strings.TrimSpace(req.URL) == "" {
		return nil, errors.New("download url required")
	}
	if req.OutputDir == "" {
		return nil, errors.New("output directory required")
	}

	spec := CommandSpec{
		Binary: c.binary,
		Args:   c.buildArgs(req),
		Dir:    req.OutputDir,
		Env:    c.environment(),
	}
	// Progress lines arrive on stdout; stderr carries warnings and errors
	// worth keeping for failure messages.
	onStdout := func(line string) {
		if onLine != nil {
			onLine(line)
		}
		if onProgress != nil {
			if update, ok := parseProgress(line); ok {
				onProgress(update)
			}
		}
	}
	onStderr := func(line string) {
		if onLine != nil {
			onLine(line)
		}
	}
	proc, err := c.exec.Start(ctx, spec, onStdout, onStderr)
	if err != nil {
		return nil, fmt.Errorf("start yt-dlp: %w", err)
	}
	return proc, nil
}

// ProbeTitle asks yt-dlp for the media title without downloading anything.
// The probe runs under its own timeout so a slow site cannot stall
// submission.
func (c *Client) ProbeTitle(ctx context.Context, url, cookiesPath string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", errors.New("download url required")
	}
	probeCtx := ctx
	if c.titleTimeout > 0 {
		var cancel context.CancelFunc
		probeCtx, cancel = context.WithTimeout(ctx, c.titleTimeout)
		defer cancel()
	}

	args := []string{"--get-title", "--no-playlist", "--no-check-certificate"}
	if cookiesPath != "" {
		args = append(args, "--cookies", cookiesPath)
	}
	args = append(args, url)

	// The title is the first stdout line. Stderr warnings are ignored, and
	// reading the variable after Wait is ordered by the process's reader
	// goroutines finishing first.
	var title string
	proc, err := c.exec.Start(probeCtx, CommandSpec{
		Binary: c.binary,
		Args:   args,
		Env:    c.environment(),
	}, func(line string) {
		if title == "" {
			title = strings.TrimSpace(line)
		}
	}, nil)
	if err != nil {
		return "", fmt.Errorf("start title probe: %w", err)
	}
	if err := proc.Wait(); err != nil {
		return "", fmt.Errorf("title probe: %w", err)
	}
	if title == "" {
		return "", errors.New("title probe produced no output")
	}
	return title, nil
}

func (c *Client) buildArgs(req Request) []string {
	args := []string{
		"--no-playlist",
		"--no-check-certificate",
		"--newline",
		"--progress",
		"-o", DefaultOutputTemplate,
	}
	if req.Format != "" {
		args = append(args, "-f", req.Format)
	}
	if req.CookiesPath != "" {
		args = append(args, "--cookies", req.CookiesPath)
	}
	if c.ffmpegPath != "" {
		args = append(args, "--ffmpeg-location", c.ffmpegPath)
	}
	args = append(args, req.URL)
	return args
}

// environment extends the daemon's environment with CA bundle overrides so
// both yt-dlp and its Python HTTP stack trust the configured certificates.
func (c *Client) environment() []string {
	env := os.Environ()
	if c.caBundle != "" {
		env = append(env,
			"SSL_CERT_FILE="+c.caBundle,
			"REQUESTS_CA_BUNDLE="+c.caBundle,
		)
	}
	return env
}

type commandExecutor struct{}

func (commandExecutor) Start(ctx context.Context, spec CommandSpec, onStdout, onStderr func(string)) (Process, error) {
	cmd := exec.CommandContext(ctx, spec.Binary, spec.Args...) //nolint:gosec
	cmd.Dir = spec.Dir
	cmd.Env = spec.Env
	// Own process group so termination reaches yt-dlp's ffmpeg children too.
	cmd.SysProcAttr = &unix.SysProcAttr{Setpgid: true}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start command: %w", err)
	}

	proc := &osProcess{cmd: cmd}

	scan := func(r io.Reader, onLine func(string)) {
		defer proc.wg.Done()
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)
		for scanner.Scan() {
			if onLine != nil {
				onLine(scanner.Text())
			}
		}
		if err := scanner.Err(); err != nil {
			proc.once.Do(func() {
				proc.scanErr = err
			})
		}
	}

	proc.wg.Add(2)
	go scan(stdout, onStdout)
	go scan(stderr, onStderr)

	return proc, nil
}

type osProcess struct {
	cmd     *exec.Cmd
	wg      sync.WaitGroup
	once    sync.Once
	scanErr error

	termOnce sync.Once
}

func (p *osProcess) Wait() error {
	p.wg.Wait()
	waitErr := p.cmd.Wait()
	if p.scanErr != nil {
		return fmt.Errorf("scan output: %w", p.scanErr)
	}
	if waitErr != nil {
		return fmt.Errorf("wait command: %w", waitErr)
	}
	return nil
}

// Terminate signals the whole process group: SIGTERM first, SIGKILL after a
// grace period if the group is still alive.
func (p *osProcess) Terminate() {
	p.termOnce.Do(func() {
		if p.cmd.Process == nil {
			return
		}
		pgid := p.cmd.Process.Pid
		if err := unix.Kill(-pgid, unix.SIGTERM); err != nil {
			return
		}
		go func() {
			time.Sleep(terminateGrace)
			_ = unix.Kill(-pgid, unix.SIGKILL)
		}()
	})
}
