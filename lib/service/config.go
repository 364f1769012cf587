package service

import "github.com/classfund/classfund.go/lib/autoverify"

type Config struct {
	DatabaseUri             string  `envconfig:"DATABASE_URI" required:"true"`
	DatabaseMaxConns        int     `envconfig:"DATABASE_MAX_CONNS" default:"10"`
	DatabaseMaxIdleConns    int     `envconfig:"DATABASE_MAX_IDLE_CONNS" default:"5"`
	DatabaseConnMaxLifetime int     `envconfig:"DATABASE_CONN_MAX_LIFETIME" default:"1800"` // 30 minutes
	DatabaseTimeout         int     `envconfig:"DATABASE_TIMEOUT" default:"60"`             // 60 seconds
	SentryDSN               string  `envconfig:"SENTRY_DSN"`
	SentryTracesSampleRate  float64 `envconfig:"SENTRY_TRACES_SAMPLE_RATE"`
	LogFilePath             string  `envconfig:"LOG_FILE_PATH"`
	JWTSecret               []byte  `envconfig:"JWT_SECRET" required:"true"`
	AdminToken              string  `envconfig:"ADMIN_TOKEN"`
	Host                    string  `envconfig:"HOST" default:"localhost:3000"`
	Port                    int     `envconfig:"PORT" default:"3000"`
	DefaultRateLimit        int     `envconfig:"DEFAULT_RATE_LIMIT" default:"10"`
	StrictRateLimit         int     `envconfig:"STRICT_RATE_LIMIT" default:"10"`
	BurstRateLimit          int     `envconfig:"BURST_RATE_LIMIT" default:"1"`
	WebhookUrl              string  `envconfig:"WEBHOOK_URL"`

	StorageDir     string `envconfig:"STORAGE_DIR" default:"storage"`
	TesseractBin   string `envconfig:"TESSERACT_BIN" default:"tesseract"`
	TesseractLangs string `envconfig:"TESSERACT_LANGS" default:"vie+eng"`

	RabbitMQUri                string `envconfig:"RABBITMQ_URI"`
	RabbitMQProofExchange      string `envconfig:"RABBITMQ_PROOF_EXCHANGE" default:"classfund_proof"`
	RabbitMQProofConsumerQueue string `envconfig:"RABBITMQ_PROOF_CONSUMER_QUEUE_NAME" default:"proof_job_consumer"`
	ProofQueueSize             int    `envconfig:"PROOF_QUEUE_SIZE" default:"64"` // in-process queue, used when no rabbitmq is configured

	// Auto-verification tunables, materialized into autoverify.Config so
	// the decision engine itself never reads ambient configuration.
	AmountToleranceAbs int64    `envconfig:"VERIFY_AMOUNT_TOLERANCE_ABS" default:"1000"`
	AmountTolerancePct float64  `envconfig:"VERIFY_AMOUNT_TOLERANCE_PCT" default:"0.01"`
	RequirePayeeMatch  bool     `envconfig:"VERIFY_REQUIRE_PAYEE_MATCH" default:"false"`
	PayeeTailLen       int      `envconfig:"VERIFY_PAYEE_TAIL_LEN" default:"6"`
	RequireTxnRef      bool     `envconfig:"VERIFY_REQUIRE_TXN_REF" default:"false"`
	RequireNote        bool     `envconfig:"VERIFY_REQUIRE_NOTE" default:"true"`
	NoteMustInclude    []string `envconfig:"VERIFY_NOTE_MUST_INCLUDE"`
}

func (c *Config) VerifierConfig() autoverify.Config {
	return autoverify.Config{
		AmountToleranceAbs: c.AmountToleranceAbs,
		AmountTolerancePct: c.AmountTolerancePct,
		RequirePayeeMatch:  c.RequirePayeeMatch,
		PayeeTailLen:       c.PayeeTailLen,
		RequireTxnRef:      c.RequireTxnRef,
		RequireNote:        c.RequireNote,
		NoteMustInclude:    c.NoteMustInclude,
	}
}
