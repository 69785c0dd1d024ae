package cmd

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/truemediaorg/brandwatch/classifier"
	"github.com/truemediaorg/brandwatch/config"
	"github.com/truemediaorg/brandwatch/database"
	"github.com/truemediaorg/brandwatch/oracle"
	"github.com/truemediaorg/brandwatch/reporting"
	"github.com/truemediaorg/brandwatch/service"
	"github.com/truemediaorg/brandwatch/source"
	"github.com/truemediaorg/brandwatch/summarizer"
	"github.com/truemediaorg/brandwatch/watcher"
)

// app holds everything a command needs for one invocation.
type app struct {
	cfg      config.Config
	database *database.Database
	watcher  *watcher.Watcher
	recorder *reporting.Recorder

	secrets *service.Secrets
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{cfg: cfg}

	databaseURL := cfg.PostgresURL
	if databaseURL == "" {
		var pgSecrets config.PostgresSecretData
		if err := a.loadSecret(ctx, cfg.PostgresSecretPath, &pgSecrets); err != nil {
			return nil, fmt.Errorf("postgres secrets: %w", err)
		}
		databaseURL = pgSecrets.ConnectionString
	}

	a.database = database.NewDatabase(databaseURL)
	if err := a.database.Connect(ctx); err != nil {
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	if err := a.database.Initialize(ctx); err != nil {
		a.database.Disconnect()
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	o, err := newOracle(cfg.Oracle)
	if err != nil {
		a.database.Disconnect()
		return nil, err
	}
	validation, err := classifier.ParseValidation(cfg.Oracle.LabelValidation)
	if err != nil {
		a.database.Disconnect()
		return nil, err
	}
	suggestionFilter := summarizer.DefaultSuggestionFilter
	if cfg.Report.SuggestionFilter != "" {
		if suggestionFilter, err = summarizer.ParseFilter(cfg.Report.SuggestionFilter); err != nil {
			a.database.Disconnect()
			return nil, err
		}
	}

	bindings, err := a.bindings(ctx)
	if err != nil {
		a.database.Disconnect()
		return nil, err
	}

	a.recorder = reporting.NewRecorder(reporting.NewLogSink(log.Fields{"component": "pipeline"}))
	a.watcher = watcher.NewWatcher(
		a.database,
		bindings,
		classifier.NewClassifier(o, cfg.Oracle.Model, a.recorder, classifier.WithValidation(validation)),
		summarizer.NewSummarizer(o, cfg.Oracle.Model, a.recorder, suggestionFilter),
		a.recorder,
		source.Options{Limit: cfg.Fetch.Limit, Window: cfg.Fetch.Window},
	)
	return a, nil
}

func (a *app) Close() {
	a.database.Disconnect()
}

// loadSecret creates the Secrets Manager client on first use so setups without
// secret paths never touch AWS.
func (a *app) loadSecret(ctx context.Context, path string, out any) error {
	if a.secrets == nil {
		secrets, err := service.NewSecrets(ctx)
		if err != nil {
			return err
		}
		a.secrets = secrets
	}
	return a.secrets.Load(ctx, path, out)
}

func newOracle(cfg config.OracleConfig) (oracle.Oracle, error) {
	backend, err := oracle.ParseBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}
	log.WithField("backend", backend).WithField("model", cfg.Model).Info("oracle configured")
	switch backend {
	case oracle.BackendOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("%s is required for the openai backend", config.EnvfileKeyOpenAIKey)
		}
		return oracle.NewOpenAI(cfg.OpenAIKey, cfg.OpenAIBaseURL), nil
	case oracle.BackendAnthropic:
		if cfg.AnthropicKey == "" {
			return nil, fmt.Errorf("%s is required for the anthropic backend", config.EnvfileKeyAnthropicKey)
		}
		return oracle.NewAnthropic(cfg.AnthropicKey), nil
	default:
		return oracle.NewOllama(cfg.OllamaURL), nil
	}
}

func (a *app) bindings(ctx context.Context) ([]watcher.Binding, error) {
	var bindings []watcher.Binding

	if a.cfg.Reddit.Enabled() {
		redditCfg := source.RedditConfig{
			ClientID:     a.cfg.Reddit.ClientID,
			ClientSecret: a.cfg.Reddit.ClientSecret,
			UserAgent:    a.cfg.Reddit.UserAgent,
		}
		if a.cfg.Reddit.SecretPath != "" {
			var redditSecrets config.RedditSecretData
			if err := a.loadSecret(ctx, a.cfg.Reddit.SecretPath, &redditSecrets); err != nil {
				return nil, fmt.Errorf("reddit secrets: %w", err)
			}
			redditCfg.ClientID, redditCfg.ClientSecret = redditSecrets.ClientID, redditSecrets.ClientSecret
		}
		subreddits := a.cfg.Reddit.Subreddits
		if len(subreddits) == 0 {
			subreddits = []string{"all"}
		}
		bindings = append(bindings, watcher.Binding{Adapter: source.NewReddit(redditCfg), Feeds: subreddits})
	}

	if a.cfg.Twitter.Enabled() {
		xCfg := source.XConfig{BearerToken: a.cfg.Twitter.BearerToken}
		if a.cfg.Twitter.SecretPath != "" {
			var twitterSecrets config.TwitterSecretData
			if err := a.loadSecret(ctx, a.cfg.Twitter.SecretPath, &twitterSecrets); err != nil {
				return nil, fmt.Errorf("twitter secrets: %w", err)
			}
			xCfg = source.XConfig{
				BearerToken:       twitterSecrets.BearerToken,
				ConsumerKey:       twitterSecrets.ConsumerKey,
				ConsumerSecret:    twitterSecrets.ConsumerSecret,
				AccessToken:       twitterSecrets.AccessToken,
				AccessTokenSecret: twitterSecrets.AccessTokenSecret,
			}
		}
		queries := a.cfg.Twitter.Queries
		if len(queries) == 0 {
			queries = []string{""}
		}
		bindings = append(bindings, watcher.Binding{Adapter: source.NewX(ctx, xCfg), Feeds: queries})
	}

	if a.cfg.Mastodon.Enabled() {
		if len(a.cfg.Mastodon.Hashtags) == 0 {
			log.Warnf("mastodon configured without %s, skipping", config.EnvfileKeyMastodonHashtags)
		} else {
			bindings = append(bindings, watcher.Binding{
				Adapter: source.NewMastodon(source.MastodonConfig{
					InstanceURL: a.cfg.Mastodon.InstanceURL,
					AccessToken: a.cfg.Mastodon.AccessToken,
				}),
				Feeds: a.cfg.Mastodon.Hashtags,
			})
		}
	}

	for _, b := range bindings {
		log.WithField("platform", b.Adapter.Platform()).WithField("feeds", len(b.Feeds)).Info("source configured")
	}
	if len(bindings) == 0 {
		log.Warn("no sources configured, fetches will add nothing")
	}
	return bindings, nil
}

// loadConfig reads the env file and applies the log settings, as every command
// does first.
func loadConfig() config.Config {
	cfg := config.FromEnvfile()
	cfg.ApplyLogging()
	return cfg
}

func logDiagnostics(recorder *reporting.Recorder) {
	if warnings, errs := len(recorder.Warnings()), len(recorder.Errors()); warnings+errs > 0 {
		log.WithField("warnings", warnings).WithField("errors", errs).Warn("run finished with diagnostics")
	}
}
