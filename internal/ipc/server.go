package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"yotdl/internal/api"
	"yotdl/internal/daemon"
	"yotdl/internal/download"
	"yotdl/internal/logging"
)

// localClient is the rate-limit identity used for submissions arriving over
// the control socket rather than the HTTP API.
const localClient = "local"

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path. The
// onStop callback runs when a client requests daemon shutdown.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, onStop func(), logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, onStop: onStop, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Yotdl", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err))
	}
}

type service struct {
	daemon *daemon.Daemon
	onStop func()
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	return logging.WithComponent(s.logger, "ipc")
}

func (s *service) Submit(req SubmitRequest, resp *SubmitResponse) error {
	job, err := s.daemon.Submit(s.ctx, req.URL, req.Format, req.Cookies, localClient)
	if err != nil {
		return err
	}
	resp.Download = api.FromJob(job)
	s.log().Info("download submitted via IPC",
		logging.String(logging.FieldEventType, "download_submit"),
		logging.String(logging.FieldDownloadID, job.ID))
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.PID = status.PID
	resp.LockPath = status.LockFilePath
	resp.DownloadDir = status.DownloadDir
	resp.APIAddr = s.daemon.APIAddr()
	resp.Stats = status.Stats
	resp.Dependencies = api.FromDependencyStatuses(status.Dependencies)
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Info("daemon stop requested via IPC",
		logging.String(logging.FieldEventType, "daemon_stop"))
	if s.onStop != nil {
		go s.onStop()
	}
	resp.Stopped = true
	return nil
}

func (s *service) List(req ListRequest, resp *ListResponse) error {
	statuses := make([]download.Status, 0, len(req.Statuses))
	for _, raw := range req.Statuses {
		if parsed, ok := download.ParseStatus(raw); ok {
			statuses = append(statuses, parsed)
		}
	}
	jobs := s.daemon.ListDownloads(statuses)
	resp.Downloads = api.FromJobs(jobs)
	return nil
}

func (s *service) Describe(req DescribeRequest, resp *DescribeResponse) error {
	if req.ID == "" {
		return errors.New("download id required")
	}
	job, err := s.daemon.GetDownload(req.ID)
	if err != nil {
		return err
	}
	resp.Download = api.FromJob(job)
	return nil
}

func (s *service) Cancel(req CancelRequest, resp *CancelResponse) error {
	if req.ID == "" {
		return errors.New("download id required")
	}
	job, err := s.daemon.Cancel(req.ID)
	if err != nil {
		return err
	}
	resp.Download = api.FromJob(job)
	s.log().Info("download cancelled via IPC",
		logging.String(logging.FieldEventType, "download_cancel"),
		logging.String(logging.FieldDownloadID, job.ID))
	return nil
}

func (s *service) Files(_ FilesRequest, resp *FilesResponse) error {
	files, err := s.daemon.Files()
	if err != nil {
		return err
	}
	resp.Files = api.FromFileInfos(files)
	return nil
}

func (s *service) DeleteFile(req DeleteFileRequest, resp *DeleteFileResponse) error {
	if req.Name == "" {
		return errors.New("file name required")
	}
	if err := s.daemon.DeleteFile(req.Name); err != nil {
		return err
	}
	resp.Deleted = true
	s.log().Info("library file deleted via IPC",
		logging.String(logging.FieldEventType, "file_delete"),
		logging.String("file", req.Name))
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, message, err := s.daemon.TestNotification(s.ctx)
	resp.Sent = sent
	resp.Message = message
	return err
}
