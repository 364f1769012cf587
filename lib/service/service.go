package service

import (
	"errors"

	"github.com/classfund/classfund.go/ocr"
	"github.com/classfund/classfund.go/rabbitmq"
	"github.com/classfund/classfund.go/storage"
	"github.com/uptrace/bun"
	"github.com/ziflex/lecho/v3"
)

// Sentinel errors mapped to HTTP responses by the controllers. Services
// check authorization before any other validation and never mutate state
// on a failed precondition.
var (
	ErrNotFound          = errors.New("resource not found")
	ErrNotMember         = errors.New("not a member of this class")
	ErrTreasurerRequired = errors.New("owner or treasurer role required")
	ErrOwnerRequired     = errors.New("owner role required")
	ErrNotInvoiceOwner   = errors.New("not your invoice")
	ErrNotSubmittable    = errors.New("invoice is not open for submission")
	ErrPastDue           = errors.New("past due date and late submissions are not allowed")
	ErrConflict          = errors.New("conflicting state transition")
)

type ClassFundService struct {
	Config         *Config
	DB             *bun.DB
	Logger         *lecho.Logger
	Ocr            ocr.Extractor
	Storage        storage.ProofStore
	RabbitMQClient rabbitmq.Client
	PaymentPubSub  *Pubsub

	proofJobs chan ProofJob
}

func New(cfg *Config, db *bun.DB, logger *lecho.Logger, extractor ocr.Extractor, store storage.ProofStore, rabbit rabbitmq.Client) *ClassFundService {
	size := cfg.ProofQueueSize
	if size <= 0 {
		size = 64
	}
	return &ClassFundService{
		Config:         cfg,
		DB:             db,
		Logger:         logger,
		Ocr:            extractor,
		Storage:        store,
		RabbitMQClient: rabbit,
		PaymentPubSub:  NewPubsub(),
		proofJobs:      make(chan ProofJob, size),
	}
}
