package app

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/anastasipancheva/miniapppass/internal/pkg/authz"
	"github.com/anastasipancheva/miniapppass/internal/pkg/clock"
	"github.com/anastasipancheva/miniapppass/internal/pkg/config"
	"github.com/anastasipancheva/miniapppass/internal/pkg/goroutine"
	"github.com/anastasipancheva/miniapppass/internal/pkg/hash"
	"github.com/anastasipancheva/miniapppass/internal/pkg/instrument"
	"github.com/anastasipancheva/miniapppass/internal/pkg/jwt"
	"github.com/anastasipancheva/miniapppass/internal/pkg/messaging"
	"github.com/anastasipancheva/miniapppass/internal/pkg/otp"
	"github.com/anastasipancheva/miniapppass/internal/pkg/qrcode"
	"github.com/anastasipancheva/miniapppass/internal/pkg/router"
	"github.com/anastasipancheva/miniapppass/internal/pkg/seal"
	"github.com/anastasipancheva/miniapppass/internal/pkg/storage"
	"github.com/anastasipancheva/miniapppass/internal/pkg/uid"
	"github.com/anastasipancheva/miniapppass/internal/pkg/validator"
	"github.com/nats-io/nats.go"
	"github.com/nsqio/go-nsq"
	"github.com/rs/cors"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// defaults applies when neither the config file nor the environment sets a key.
var defaults = map[string]any{
	"app.tz":                               "UTC",
	"app.node_id":                          1,
	"app.server.max_goroutine":             100,
	"app.server.http.address":              ":8080",
	"app.server.http.read_timeout":         "10s",
	"app.server.http.read_header_timeout":  "5s",
	"app.server.http.write_timeout":        "10s",
	"app.server.http.idle_timeout":         "60s",
	"app.server.sse.address":               ":8081",
	"app.server.sse.read_header_timeout":   "5s",
	"instrument.enabled":                   false,
	"instrument.service_name":              "miniapppass",
	"instrument.trace_sample_percent":      100,
	"instrument.metric_interval":           "15s",
	"instrument.log_level":                 "info",
	"jwt.issuer":                           "miniapppass",
	"jwt.ttl":                              "1h",
	"hash.bcrypt.cost":                     12,
	"access.issuer":                        "MiniAppPass",
	"access.window_steps":                  otp.DefaultWindow,
	"access.qr_size":                       256,
	"access.expiring_within":               "720h",
	"access.expiry.interval":               "1h",
	"access.expiry.warn_within":            "72h",
	"access.sync_timeout":                  "10s",
	"notification.retention":               500,
	"controller.timeout":                   "5s",
	"controller.max_retries":               3,
	"controller.backoff":                   "200ms",
	"messaging.driver":                     messaging.DriverLog,
	"messaging.topic":                      "miniapppass.credentials",
	"messaging.kafka.batch_timeout":        "100ms",
	"messaging.nats.max_reconnects":        60,
	"messaging.nats.timeout":               "2s",
	"messaging.nats.reconnect_wait":        "2s",
	"messaging.nsq.producer.dial_timeout":  "1s",
	"messaging.nsq.producer.read_timeout":  "60s",
	"messaging.nsq.producer.write_timeout": "1s",
	"storage.driver":                       storage.DriverMemory,
	"storage.bucket":                       "miniapppass-audit",
	"storage.presign_expiry":               "15m",
}

func (a *App) initConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	cfg, err := config.NewViper(path, defaults)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("app.tz"))

	a.config = cfg
}

func (a *App) initInstrument() {
	ratio := 1.0
	if v := a.config.GetInt("instrument.trace_sample_percent"); v > 0 {
		ratio = float64(min(v, 100)) / 100
	}

	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          a.config.GetBool("instrument.enabled"),
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		InstanceID:       strconv.FormatInt(a.config.GetInt64("app.node_id"), 10),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: ratio,
		MetricsInterval:  a.config.GetDuration("instrument.metric_interval"),
		LogLevel:         a.config.GetString("instrument.log_level"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))
	a.hmac = hash.NewHMACSHA256(a.config.GetString("controller.secret"))
	a.bcrypt = hash.NewBcrypt(a.config.GetInt("hash.bcrypt.cost"), a.config.GetString("hash.bcrypt.pepper"))
	a.totp = otp.NewTOTP(a.config.GetInt("access.window_steps"))
	a.qrcode = qrcode.NewPNGEncoder(a.config.GetInt("access.qr_size"))

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator

	snow, err := uid.NewSnowflake(a.config.GetInt64("app.node_id"))
	if err != nil {
		slog.Error("failed to init uid number snowflake", "error", err)
		os.Exit(1)
	}
	a.uid = snow

	// the sealing key is optional; without it no broker sink is wired
	switch key := a.config.GetBinary("access.seal_key"); len(key) {
	case 0:
	case 32:
		a.sealer = seal.NewXChaCha(seal.StaticKeyProvider{KeyBytes: key})
	default:
		slog.Error("failed to init sealer, access.seal_key must be 32 bytes base64 encoded", "length", len(key))
		os.Exit(1)
	}
}

func (a *App) initJWT() {
	defaultJWT, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(a.config.GetString("jwt.secret")),
		Issuer:    a.config.GetString("jwt.issuer"),
		Audiences: a.config.GetArray("jwt.audiences"),
		TTL:       a.config.GetDuration("jwt.ttl"),
		Clock:     a.clock,
		UUID:      a.uuid,
	})
	if err != nil {
		slog.Error("failed to init jwt token", "error", err)
		os.Exit(1)
	}
	a.jwt = defaultJWT
}

//nolint:gocognit // it's fine
func (a *App) initStorage() {
	driver := strings.TrimSpace(a.config.GetString("storage.driver"))

	var gcsClient *gcs.Client
	if driver == storage.DriverGCS {
		gcsOptions := []option.ClientOption{}
		if a.config.GetBool("storage.gcs.without_auth") {
			gcsOptions = append(gcsOptions, option.WithoutAuthentication())
		}
		if v := strings.TrimSpace(a.config.GetString("storage.gcs.credentials_file")); v != "" {
			// #nosec G304 -- path is from trusted config file.
			credsJSON, err := os.ReadFile(v)
			if err != nil {
				slog.Error("failed to read gcs credentials file", "error", err)
				os.Exit(1)
			}
			creds, err := google.CredentialsFromJSON(a.ctx, credsJSON, gcs.ScopeReadWrite)
			if err != nil {
				slog.Error("failed to parse gcs credentials file", "error", err)
				os.Exit(1)
			}
			gcsOptions = append(gcsOptions, option.WithCredentials(creds))
		}
		if v := a.config.GetBinary("storage.gcs.credentials_json"); len(v) > 0 {
			creds, err := google.CredentialsFromJSON(a.ctx, v, gcs.ScopeReadWrite)
			if err != nil {
				slog.Error("failed to parse gcs credentials json", "error", err)
				os.Exit(1)
			}
			gcsOptions = append(gcsOptions, option.WithCredentials(creds))
		}
		if v := strings.TrimSpace(a.config.GetString("storage.gcs.endpoint")); v != "" {
			gcsOptions = append(gcsOptions, option.WithEndpoint(v))
		}
		if len(gcsOptions) > 0 {
			client, err := gcs.NewClient(a.ctx, gcsOptions...)
			if err != nil {
				slog.Error("failed to init gcs client", "error", err)
				os.Exit(1)
			}
			gcsClient = client
		}
	}

	stg, err := storage.NewFromDriver(a.ctx, driver, storage.FactoryOptions{
		S3: storage.S3Options{
			Region:       strings.TrimSpace(a.config.GetString("storage.s3.region")),
			Endpoint:     strings.TrimSpace(a.config.GetString("storage.s3.endpoint")),
			AccessKey:    strings.TrimSpace(a.config.GetString("storage.s3.access_key")),
			SecretKey:    strings.TrimSpace(a.config.GetString("storage.s3.secret_key")),
			SessionToken: strings.TrimSpace(a.config.GetString("storage.s3.session_token")),
			UsePathStyle: a.config.GetBool("storage.s3.use_path_style"),
		},
		GCS: storage.GCSOptions{
			Client:         gcsClient,
			GoogleAccessID: strings.TrimSpace(a.config.GetString("storage.gcs.signer_access_id")),
			PrivateKey:     a.config.GetBinary("storage.gcs.signer_private_key"),
		},
		MinIO: storage.MinIOOptions{
			Region:       strings.TrimSpace(a.config.GetString("storage.minio.region")),
			Endpoint:     strings.TrimSpace(a.config.GetString("storage.minio.endpoint")),
			AccessKey:    strings.TrimSpace(a.config.GetString("storage.minio.access_key")),
			SecretKey:    strings.TrimSpace(a.config.GetString("storage.minio.secret_key")),
			SessionToken: strings.TrimSpace(a.config.GetString("storage.minio.session_token")),
			UseSSL:       a.config.GetBool("storage.minio.use_ssl"),
		},
	})
	if err != nil {
		slog.Error("failed to init storage", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.storage = stg
}

func (a *App) initMessaging() {
	driver := a.config.GetString("messaging.driver")

	var pubsubOptions []option.ClientOption
	if v := strings.TrimSpace(a.config.GetString("messaging.pubsub.endpoint")); v != "" {
		// emulator
		pubsubOptions = append(pubsubOptions, option.WithEndpoint(v), option.WithoutAuthentication())
	}

	client, err := messaging.NewFromDriver(a.ctx, driver, messaging.FactoryOptions{
		NSQ: messaging.NSQConfig{
			ProducerAddr: a.config.GetString("messaging.nsq.producer_addr"),
			ProducerConfig: func() *nsq.Config {
				cfg := nsq.NewConfig()
				cfg.DialTimeout = a.config.GetDuration("messaging.nsq.producer.dial_timeout")
				cfg.ReadTimeout = a.config.GetDuration("messaging.nsq.producer.read_timeout")
				cfg.WriteTimeout = a.config.GetDuration("messaging.nsq.producer.write_timeout")
				return cfg
			}(),
		},
		NATS: messaging.NATSConfig{
			URL: a.config.GetString("messaging.nats.url"),
			Options: []nats.Option{
				nats.Name(a.config.GetString("instrument.service_name")),
				nats.MaxReconnects(a.config.GetInt("messaging.nats.max_reconnects")),
				nats.Timeout(a.config.GetDuration("messaging.nats.timeout")),
				nats.ReconnectWait(a.config.GetDuration("messaging.nats.reconnect_wait")),
				nats.RetryOnFailedConnect(a.config.GetBool("messaging.nats.retry_on_failed_connect")),
			},
		},
		Kafka: messaging.KafkaConfig{
			Brokers:      a.config.GetArray("messaging.kafka.brokers"),
			BatchTimeout: a.config.GetDuration("messaging.kafka.batch_timeout"),
		},
		PubSub: messaging.PubSubConfig{
			ProjectID:     a.config.GetString("messaging.pubsub.project_id"),
			ClientOptions: pubsubOptions,
		},
	})
	if err != nil {
		slog.Error("failed to init messaging", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.messaging = client
}

func (a *App) initCasbin() {
	e, err := authz.NewEnforcer(authz.DefaultPolicies())
	if err != nil {
		slog.Error("failed to init casbin", "error", err)
		os.Exit(1)
	}

	a.casbin = e
}

func (a *App) initHTTPServer() {
	cfg := router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		JWT:        a.jwt,
		Instrument: a.ins,
		Enforcer:   a.casbin,
	}
	a.router = router.NewRouter(cfg)
	a.sseRouter = router.NewRouter(cfg)

	a.router.GET("/health", func(*router.Request) (any, error) {
		return map[string]string{"status": "ok"}, nil
	})

	withCORS := func(h http.Handler) http.Handler {
		return cors.New(cors.Options{
			AllowedOrigins: a.config.GetArray("app.server.cors"),
			AllowedMethods: []string{
				http.MethodGet,
				http.MethodPost,
				http.MethodPut,
				http.MethodDelete,
				http.MethodOptions,
			},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
		}).Handler(h)
	}

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           withCORS(a.router),
		ReadTimeout:       a.config.GetDuration("app.server.http.read_timeout"),
		ReadHeaderTimeout: a.config.GetDuration("app.server.http.read_header_timeout"),
		WriteTimeout:      a.config.GetDuration("app.server.http.write_timeout"),
		IdleTimeout:       a.config.GetDuration("app.server.http.idle_timeout"),
	}

	// no write timeout: event streams stay open until the app context ends
	a.sseServer = &http.Server{
		Addr:              a.config.GetString("app.server.sse.address"),
		Handler:           withCORS(a.sseRouter),
		ReadHeaderTimeout: a.config.GetDuration("app.server.sse.read_header_timeout"),
		BaseContext:       func(net.Listener) context.Context { return a.ctx },
	}
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "Messaging",
			fn: func(context.Context) error {
				return a.messaging.Close()
			},
		},
		{
			name: "Storage",
			fn: func(context.Context) error {
				return a.storage.Close()
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}
