package external

import (
	"encoding/json"
	"time"

	"passport-oracle/pkg/logger"
	"passport-oracle/pkg/utilities"
	"passport-oracle/src/model"
	"passport-oracle/src/pipeline"
	"passport-oracle/src/registry"

	"github.com/mr-tron/base58"
	"github.com/robfig/cron"
)

// AnchorPayload is the borsh-encoded instruction data for a registry root
// checkpoint.
type AnchorPayload struct {
	Root      [32]byte
	Count     uint64
	Timestamp int64
}

// RootAnchorWorker periodically checkpoints the registry root on-chain so
// external verifiers can audit inclusion proofs against a published
// snapshot. A root is only anchored once; an unchanged registry produces
// no new work.
type RootAnchorWorker struct {
	contract     *registry.Contract
	pipe         *pipeline.Pipeline
	schedule     string
	log          *logger.Logger
	scheduler    *cron.Cron
	lastAnchored uint64
}

func NewRootAnchorWorker(contract *registry.Contract, pipe *pipeline.Pipeline, schedule string, log *logger.Logger) *RootAnchorWorker {
	return &RootAnchorWorker{
		contract: contract,
		pipe:     pipe,
		schedule: utilities.Ternary(schedule != "", schedule, "@every 1m"),
		log:      log,
	}
}

func (w *RootAnchorWorker) GetServiceName() string {
	return "root-anchor"
}

func (w *RootAnchorWorker) StartService() {
	w.scheduler = cron.New()
	if err := w.scheduler.AddFunc(w.schedule, w.anchor); err != nil {
		w.log.Fatal(err, "failed to schedule root anchoring")
	}
	w.scheduler.Start()
	w.log.Infof("root anchoring scheduled: %s", w.schedule)
}

func (w *RootAnchorWorker) anchor() {
	count := w.contract.Count()
	if count == w.lastAnchored {
		return
	}

	root := w.contract.Root()
	rootDigest := root.Bytes()
	payload, err := json.Marshal(AnchorPayload{
		Root:      rootDigest,
		Count:     count,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		w.log.Error(err, "failed to encode anchor payload")
		return
	}

	rootKey := "anchor:" + base58.Encode(rootDigest[:])
	queueId, err := w.pipe.Enqueue(rootKey, model.TypeBatchAnchor, payload)
	if err != nil {
		if err == pipeline.ErrAlreadySubmitted {
			w.lastAnchored = count
			return
		}
		w.log.Error(err, "failed to enqueue root anchor")
		return
	}

	w.lastAnchored = count
	w.log.Infof("anchoring root at count %d, queued as %s", count, queueId)
}
