package metrics

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Signing modes used as label values.
const (
	ModeAgent    = "agent"
	ModeUser     = "user"
	ModeMultiSig = "multisig"
)

// Collectors groups the signer's Prometheus metrics. A nil *Collectors is valid and records
// nothing.
type Collectors struct {
	signatures       *prometheus.CounterVec
	failures         *prometheus.CounterVec
	noncesIssued     prometheus.Counter
	keyBuffersLocked prometheus.Gauge
	keyLockFailures  prometheus.Counter
	multiSigAppends  *prometheus.CounterVec
}

// New creates the collectors under namespace without registering them.
func New(namespace string) *Collectors {
	return &Collectors{
		signatures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signatures_total",
			Help:      "Signatures produced, by signing mode.",
		}, []string{"mode"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signing_failures_total",
			Help:      "Signing requests that failed, by signing mode and reason.",
		}, []string{"mode", "reason"}),
		noncesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nonces_issued_total",
			Help:      "Nonces handed out by the wallet nonce source.",
		}),
		keyBuffersLocked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "key_buffers_locked",
			Help:      "Live key buffers whose memory is locked against swapping.",
		}),
		keyLockFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "key_buffer_lock_failures_total",
			Help:      "Key buffers created without a memory lock.",
		}),
		multiSigAppends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "multisig_signatures_total",
			Help:      "Signatures appended to multi-sig envelopes, by outcome.",
		}, []string{"outcome"}),
	}
}

// Register registers every collector on reg.
func (c *Collectors) Register(reg prometheus.Registerer) error {
	for _, collector := range []prometheus.Collector{
		c.signatures,
		c.failures,
		c.noncesIssued,
		c.keyBuffersLocked,
		c.keyLockFailures,
		c.multiSigAppends,
	} {
		if err := reg.Register(collector); err != nil {
			return errors.Wrap(err, "failed to register collector")
		}
	}
	return nil
}

// SignatureProduced counts one signature in mode.
func (c *Collectors) SignatureProduced(mode string) {
	if c == nil {
		return
	}
	c.signatures.WithLabelValues(mode).Inc()
}

// SigningFailed counts one failed signing request.
func (c *Collectors) SigningFailed(mode string, reason string) {
	if c == nil {
		return
	}
	c.failures.WithLabelValues(mode, reason).Inc()
}

// NonceIssued counts one nonce.
func (c *Collectors) NonceIssued() {
	if c == nil {
		return
	}
	c.noncesIssued.Inc()
}

// KeyBufferCreated records the lock status of a new key buffer.
func (c *Collectors) KeyBufferCreated(locked bool) {
	if c == nil {
		return
	}
	if locked {
		c.keyBuffersLocked.Inc()
		return
	}
	c.keyLockFailures.Inc()
}

// KeyBufferDestroyed records the release of a key buffer.
func (c *Collectors) KeyBufferDestroyed(locked bool) {
	if c == nil || !locked {
		return
	}
	c.keyBuffersLocked.Dec()
}

// MultiSigSignature counts one envelope append attempt by outcome.
func (c *Collectors) MultiSigSignature(outcome string) {
	if c == nil {
		return
	}
	c.multiSigAppends.WithLabelValues(outcome).Inc()
}
