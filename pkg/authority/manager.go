/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package authority publishes and fetches Saturn authority objects: the
// signed, expiring self-descriptions providers and payees are discovered
// through.
package authority

import (
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/webpki/saturn-go/pkg/crypto/signatures"
	"github.com/webpki/saturn-go/pkg/saturn"
)

var logger = log.New("saturn/authority")

const renewRetries = 4

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	// ProviderData is the provider self-description template. TimeStamp and
	// Expires are overwritten on every renewal.
	ProviderData *saturn.ProviderAuthorityData

	// PayeeAuthorityBaseURL is the URL prefix payee authority URLs are
	// derived from by appending the URL-safe local payee id.
	PayeeAuthorityBaseURL string

	// Payees are the payees this provider publishes authority objects for.
	Payees []*saturn.PayeeCoreProperties

	// ExpiryPeriod is the validity period of published objects. Renewal
	// runs at half this period.
	ExpiryPeriod time.Duration

	// ProviderSigner signs the provider authority object.
	ProviderSigner *signatures.X509Signer

	// AttestationSigner signs the payee authority objects.
	AttestationSigner *signatures.KeySigner
}

// Manager periodically re-signs a provider authority object and the payee
// authority objects it attests, keeping the published blobs inside their
// validity window. A failed renewal is retried with backoff and never stops
// the renewal loop: the previous blobs stay published until they can be
// replaced.
type Manager struct {
	cfg ManagerConfig

	mu             sync.RWMutex
	providerSigner *signatures.X509Signer
	providerBlob   []byte
	payeeBlobs     map[string][]byte // by local payee id

	stop chan struct{}
	done chan struct{}
}

// NewManager creates a manager, publishes the initial objects and starts
// the renewal loop.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.ExpiryPeriod <= 0 {
		return nil, fmt.Errorf("expiry period must be positive")
	}

	manager := &Manager{
		cfg:            cfg,
		providerSigner: cfg.ProviderSigner,
		payeeBlobs:     map[string][]byte{},
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}

	if err := manager.update(); err != nil {
		return nil, fmt.Errorf("publish authority objects: %w", err)
	}

	go manager.renewLoop()

	return manager, nil
}

// ProviderAuthorityBlob returns the currently published provider authority
// serialization.
func (m *Manager) ProviderAuthorityBlob() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.providerBlob
}

// PayeeAuthorityBlob returns the currently published payee authority
// serialization for a local payee id.
func (m *Manager) PayeeAuthorityBlob(localPayeeID string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	blob, ok := m.payeeBlobs[localPayeeID]

	return blob, ok
}

// PayeeAuthorityURL returns the authority URL a payee's object is published
// under.
func (m *Manager) PayeeAuthorityURL(localPayeeID string) string {
	return m.cfg.PayeeAuthorityBaseURL + "/" + saturn.URLSafeID(localPayeeID)
}

// UpdateProviderSigner swaps the provider signing credential, for example
// after a certificate rollover, and republishes immediately.
func (m *Manager) UpdateProviderSigner(signer *signatures.X509Signer) error {
	m.mu.Lock()
	m.providerSigner = signer
	m.mu.Unlock()

	return m.update()
}

// Stop terminates the renewal loop.
func (m *Manager) Stop() {
	close(m.stop)
	<-m.done
}

func (m *Manager) renewLoop() {
	defer close(m.done)

	ticker := time.NewTicker(m.cfg.ExpiryPeriod / 2)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			err := backoff.Retry(m.update,
				backoff.WithMaxRetries(backoff.NewExponentialBackOff(), renewRetries))
			if err != nil {
				// Old blobs stay published; the next tick tries again.
				logger.Errorf("authority renewal failed, keeping stale objects: %v", err)
			}
		}
	}
}

func (m *Manager) update() error {
	now := time.Now()
	expires := now.Add(m.cfg.ExpiryPeriod)

	m.mu.RLock()
	providerSigner := m.providerSigner
	m.mu.RUnlock()

	providerData := *m.cfg.ProviderData
	providerData.TimeStamp = now
	providerData.Expires = expires

	providerObj, err := saturn.EncodeProviderAuthority(&providerData, providerSigner)
	if err != nil {
		return fmt.Errorf("encode provider authority: %w", err)
	}

	providerBlob, err := providerObj.Pretty()
	if err != nil {
		return err
	}

	payeeBlobs := make(map[string][]byte, len(m.cfg.Payees))

	for _, core := range m.cfg.Payees {
		payeeObj, err := saturn.EncodePayeeAuthority(&saturn.PayeeAuthorityData{
			AuthorityURL:         m.PayeeAuthorityURL(core.LocalPayeeID),
			ProviderAuthorityURL: m.cfg.ProviderData.AuthorityURL,
			Core:                 core,
			TimeStamp:            now,
			Expires:              expires,
		}, m.cfg.AttestationSigner)
		if err != nil {
			return fmt.Errorf("encode payee authority %s: %w", core.LocalPayeeID, err)
		}

		blob, err := payeeObj.Pretty()
		if err != nil {
			return err
		}

		payeeBlobs[core.LocalPayeeID] = blob
	}

	m.mu.Lock()
	m.providerBlob = providerBlob
	m.payeeBlobs = payeeBlobs
	m.mu.Unlock()

	logger.Debugf("published %d authority objects, expires %s", len(payeeBlobs)+1,
		expires.Format(time.RFC3339))

	return nil
}
