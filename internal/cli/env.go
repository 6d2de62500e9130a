package cli

import (
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/AweemRizwan/smm-optimize-sub001/internal/auth"
	"github.com/AweemRizwan/smm-optimize-sub001/internal/cache"
	"github.com/AweemRizwan/smm-optimize-sub001/internal/config"
	"github.com/AweemRizwan/smm-optimize-sub001/pkg/api"
)

// env bundles the wired-up client stack for one command invocation.
type env struct {
	home  string
	cfg   *config.Config
	sess  *auth.Session
	api   *api.Client
	cache *cache.Store // nil unless withCache
	log   zerolog.Logger
}

// newEnv loads configuration and builds the session guard and SDK for the
// home directory carried in the command context. withCache additionally opens
// the local task cache.
func newEnv(cmd *cobra.Command, withCache bool) (*env, error) {
	home := config.MustHomeFrom(cmd.Context())
	cfg, err := config.Load(home)
	if err != nil {
		return nil, err
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	sess := auth.NewSession(auth.NewFileStore(home))
	sess.Rehydrate()

	guard := auth.NewGuard(
		otelhttp.NewTransport(http.DefaultTransport),
		sess,
		cfg.APIBaseURL+"/api/auth/refresh/",
		log.With().Str("component", "auth").Logger(),
	)
	client := api.New(cfg.APIBaseURL, guard.HTTPClient())
	client.Log = log.With().Str("component", "api").Logger()

	e := &env{home: home, cfg: cfg, sess: sess, api: client, log: log}
	if withCache {
		store, err := cache.Open(home, log.With().Str("component", "cache").Logger())
		if err != nil {
			return nil, err
		}
		e.cache = store
		client.Cache = store
	}
	return e, nil
}

func (e *env) close() {
	if e.cache != nil {
		_ = e.cache.Close()
	}
}
