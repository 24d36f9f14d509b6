package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/loomkit/willow/cmd/willow/internal/config"
	"github.com/loomkit/willow/examples/counter"
	"github.com/loomkit/willow/pkg/live"
	"github.com/loomkit/willow/pkg/server"
)

const indexPage = `<!DOCTYPE html>
<html>
<head><title>willow counter</title></head>
<body>
<div id="app"></div>
<script src="/static/wasm_exec.js"></script>
<script>
const go = new Go();
WebAssembly.instantiateStreaming(fetch("/static/client.wasm"), go.importObject)
	.then((result) => go.run(result.instance));
</script>
</body>
</html>`

const serverDrivenPage = `<!DOCTYPE html>
<html>
<head><title>willow counter (server-driven)</title></head>
<body>
<div id="app"></div>
<script src="/static/wasm_exec.js"></script>
<script>
const go = new Go();
WebAssembly.instantiateStreaming(fetch("/static/liveclient.wasm"), go.importObject)
	.then((result) => go.run(result.instance));
</script>
</body>
</html>`

func newServeCommand() *cobra.Command {
	var addr string
	var dashboard bool
	var cwd string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the counter demo in both client and server-driven modes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cwd)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if addr != "" {
				cfg.Serve.Addr = addr
			}
			if dashboard {
				cfg.Serve.Dashboard = true
			}
			return runServe(cfg.Serve)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "address to listen on (overrides willow.yaml)")
	cmd.Flags().BoolVar(&dashboard, "dashboard", false, "run a terminal dashboard of connected live sessions")
	cmd.Flags().StringVar(&cwd, "cwd", ".", "directory to load willow.yaml from")

	return cmd
}

func runServe(cfg *config.ServeConfig) error {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	liveServer := live.NewServer(logger)

	var instancesMu sync.Mutex
	instances := make(map[string]*server.Instance)

	liveServer.NewDispatch = func(sessionID string) live.EventHandler {
		d := &counter.Dispatcher{}
		inst := server.NewInstance(sessionID, sessionID, counter.New(d), logger)
		d.Bind(inst)
		instancesMu.Lock()
		instances[sessionID] = inst
		instancesMu.Unlock()
		return inst.HandleEvent
	}
	liveServer.OnConnect = func(sessionID string, s *live.Session) {
		instancesMu.Lock()
		inst, ok := instances[sessionID]
		instancesMu.Unlock()
		if !ok {
			return
		}
		inst.AttachSession(s)
		root, err := inst.Mount()
		if err != nil {
			logger.Error("mount failed", "session", sessionID, "err", err)
			return
		}
		if err := s.SendRoot(root); err != nil {
			logger.Error("send root failed", "session", sessionID, "err", err)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(indexPage))
	})
	mux.HandleFunc("/server-demo", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(serverDrivenPage))
	})
	mux.Handle("/live/", liveServer)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	logger.Info("willow serve listening", "addr", cfg.Addr)

	if cfg.Dashboard {
		errCh := make(chan error, 1)
		go func() { errCh <- http.ListenAndServe(cfg.Addr, mux) }()
		if err := runDashboard(liveServer); err != nil {
			return err
		}
		return <-errCh
	}

	return http.ListenAndServe(cfg.Addr, mux)
}
