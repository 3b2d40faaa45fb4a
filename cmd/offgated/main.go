// Command offgated runs the offline cache gateway as a local reverse proxy
// in front of the Appen-Dictionary backend. Static assets are precached at
// boot; API and audio responses are captured and replayed when the upstream
// is unreachable.
//
// Control messages are exposed over HTTP:
//
//	POST /-/control {"type":"SKIP_WAITING"}
//	POST /-/control {"type":"CLEAR_CACHE"}
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zhugt2019/offgate"
	zaplog "github.com/zhugt2019/offgate/log/zap"
	"github.com/zhugt2019/offgate/manifest"
	"github.com/zhugt2019/offgate/store"
	bcstore "github.com/zhugt2019/offgate/store/bigcache"
	redstore "github.com/zhugt2019/offgate/store/redis"
)

type config struct {
	Listen            string        `env:"OFFGATE_LISTEN" envDefault:":8090"`
	Upstream          string        `env:"OFFGATE_UPSTREAM" envDefault:"http://localhost:8000"`
	Namespace         string        `env:"OFFGATE_NAMESPACE" envDefault:"appen-dictionary"`
	Version           string        `env:"OFFGATE_VERSION" envDefault:"dev"`
	RedisAddr         string        `env:"OFFGATE_REDIS_ADDR"`
	Precache          []string      `env:"OFFGATE_PRECACHE" envSeparator:","`
	MaxAge            time.Duration `env:"OFFGATE_MAX_AGE"`
	BestEffortInstall bool          `env:"OFFGATE_BEST_EFFORT_INSTALL"`
	ShutdownTimeout   time.Duration `env:"OFFGATE_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		logger.Fatal("parse env", zap.Error(err))
	}

	upstream, err := url.Parse(cfg.Upstream)
	if err != nil || !upstream.IsAbs() {
		logger.Fatal("upstream must be an absolute URL", zap.String("upstream", cfg.Upstream))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, man, err := buildBackend(cfg)
	if err != nil {
		logger.Fatal("init store", zap.Error(err))
	}

	gw, err := offgate.New(offgate.Options{
		Namespace:         cfg.Namespace,
		Version:           cfg.Version,
		BaseURL:           cfg.Upstream,
		Store:             st,
		Manifest:          man,
		Precache:          cfg.Precache,
		MaxAge:            cfg.MaxAge,
		BestEffortInstall: cfg.BestEffortInstall,
		Logger:            zaplog.ZapLogger{L: logger},
	})
	if err != nil {
		logger.Fatal("init gateway", zap.Error(err))
	}
	defer gw.Close(context.Background())

	if err := gw.Install(ctx); err != nil {
		logger.Fatal("install", zap.Error(err))
	}
	if err := gw.Activate(ctx); err != nil {
		logger.Fatal("activate", zap.Error(err))
	}

	proxy := httputil.NewSingleHostReverseProxy(upstream)
	proxy.Transport = gw

	mux := http.NewServeMux()
	mux.Handle("/", proxy)
	mux.HandleFunc("/-/control", controlHandler(gw, logger))
	mux.HandleFunc("/-/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{Addr: cfg.Listen, Handler: mux}
	go func() {
		logger.Info("listening",
			zap.String("addr", cfg.Listen),
			zap.String("upstream", cfg.Upstream),
			zap.String("static", gw.StaticGeneration()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("serve", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

// buildBackend picks redis when an address is configured (entries and ledger
// survive restarts), in-process bigcache otherwise.
func buildBackend(cfg config) (store.Store, manifest.Manifest, error) {
	if cfg.RedisAddr != "" {
		client := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		st, err := redstore.New(redstore.Config{Client: client, CloseClient: true})
		if err != nil {
			return nil, nil, err
		}
		return st, manifest.NewRedisManifest(client, cfg.Namespace), nil
	}
	st, err := bcstore.New(bcstore.Config{LifeWindow: 24 * time.Hour})
	if err != nil {
		return nil, nil, err
	}
	return st, nil, nil // nil manifest => in-process default
}

func controlHandler(gw offgate.Gateway, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var msg struct {
			Type string `json:"type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		reply := make(chan offgate.Ack, 1)
		err := gw.Control(r.Context(), offgate.Control{
			Type:  offgate.ControlType(msg.Type),
			Reply: reply,
		})
		if err != nil {
			logger.Error("control", zap.String("type", msg.Type), zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		ack := offgate.Ack{OK: true}
		select {
		case ack = <-reply:
		default:
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]bool{"ok": ack.OK})
	}
}
