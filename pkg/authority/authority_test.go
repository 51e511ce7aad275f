/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package authority

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/webpki/saturn-go/pkg/crypto/hybrid"
	"github.com/webpki/saturn-go/pkg/crypto/signatures"
	"github.com/webpki/saturn-go/pkg/doc/json"
	"github.com/webpki/saturn-go/pkg/saturn"
)

const (
	testAuthorityURL = "https://bank.example.com/authority"
	testPayeeBaseURL = "https://bank.example.com/payees"
)

type testProvider struct {
	signer      *signatures.X509Signer
	attestation *signatures.KeySigner
	caCert      *x509.Certificate
}

func newECKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	return key
}

// newTestProvider issues a throwaway CA plus an end entity credential and
// wraps the end entity key in both signer flavors, so that payee authority
// objects attest under the same key the provider certifies with.
func newTestProvider(t *testing.T, name string) *testProvider {
	t.Helper()

	caKey := newECKey(t)

	caTemplate := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: name + " CA"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	caDER, err := x509.CreateCertificate(rand.Reader, caTemplate, caTemplate,
		&caKey.PublicKey, caKey)
	require.NoError(t, err)

	caCert, err := x509.ParseCertificate(caDER)
	require.NoError(t, err)

	eeKey := newECKey(t)

	eeTemplate := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{CommonName: name},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}

	eeDER, err := x509.CreateCertificate(rand.Reader, eeTemplate, caCert, &eeKey.PublicKey, caKey)
	require.NoError(t, err)

	eeCert, err := x509.ParseCertificate(eeDER)
	require.NoError(t, err)

	signer, err := signatures.NewX509Signer(signatures.ES256, eeKey,
		[]*x509.Certificate{eeCert})
	require.NoError(t, err)

	attestation, err := signatures.NewKeySigner(signatures.ES256, eeKey)
	require.NoError(t, err)

	return &testProvider{signer: signer, attestation: attestation, caCert: caCert}
}

func testManagerConfig(t *testing.T, provider *testProvider,
	expiryPeriod time.Duration) ManagerConfig {
	t.Helper()

	payeeKey := newECKey(t)

	return ManagerConfig{
		ProviderData: &saturn.ProviderAuthorityData{
			AuthorityURL:      testAuthorityURL,
			CommonName:        "Test Bank",
			HomePage:          "https://bank.example.com",
			LogotypeURL:       "https://bank.example.com/logo.svg",
			ServiceURL:        "https://bank.example.com/service",
			PaymentMethods:    []saturn.PaymentMethod{saturn.MethodSuperCard},
			SignatureProfiles: []signatures.Algorithm{signatures.ES256},
			EncryptionParameters: []saturn.EncryptionParameter{{
				ContentAlgorithm: hybrid.A128CBCHS256,
				KeyAlgorithm:     hybrid.ECDHES,
				PublicKey:        &newECKey(t).PublicKey,
			}},
		},
		PayeeAuthorityBaseURL: testPayeeBaseURL,
		Payees: []*saturn.PayeeCoreProperties{{
			LocalPayeeID: "space shop#86344",
			CommonName:   "Space Shop",
			HomePage:     "https://spaceshop.example.com",
			LogotypeURL:  "https://spaceshop.example.com/logo.svg",
			SignatureParameters: []saturn.SignatureParameter{{
				Algorithm: signatures.ES256,
				PublicKey: &payeeKey.PublicKey,
			}},
		}},
		ExpiryPeriod:      expiryPeriod,
		ProviderSigner:    provider.signer,
		AttestationSigner: provider.attestation,
	}
}

func parseProviderBlob(t *testing.T, blob []byte) *saturn.ProviderAuthority {
	t.Helper()

	rd, err := json.Parse(blob)
	require.NoError(t, err)

	authority, err := saturn.ParseProviderAuthority(rd, testAuthorityURL)
	require.NoError(t, err)

	return authority
}

func TestManagerPublishesBlobs(t *testing.T) {
	provider := newTestProvider(t, "Test Bank")

	manager, err := NewManager(testManagerConfig(t, provider, time.Hour))
	require.NoError(t, err)

	defer manager.Stop()

	authority := parseProviderBlob(t, manager.ProviderAuthorityBlob())
	require.NoError(t, authority.Signature.VerifyTrust(provider.caCert))
	require.Equal(t, "Test Bank", authority.CommonName)

	payeeURL := manager.PayeeAuthorityURL("space shop#86344")
	require.Equal(t, testPayeeBaseURL+"/space_shop_86344", payeeURL)

	blob, ok := manager.PayeeAuthorityBlob("space shop#86344")
	require.True(t, ok)

	rd, err := json.Parse(blob)
	require.NoError(t, err)

	payee, err := saturn.ParsePayeeAuthority(rd, payeeURL)
	require.NoError(t, err)
	require.Equal(t, testAuthorityURL, payee.ProviderAuthorityURL)
	require.Equal(t, "Space Shop", payee.Core.CommonName)

	// The attestation key is the provider's own certified key.
	require.NoError(t, authority.CheckPayeeKey(payee))

	_, ok = manager.PayeeAuthorityBlob("nobody")
	require.False(t, ok)
}

func TestManagerRenewsBlobs(t *testing.T) {
	provider := newTestProvider(t, "Test Bank")

	manager, err := NewManager(testManagerConfig(t, provider, 100*time.Millisecond))
	require.NoError(t, err)

	defer manager.Stop()

	initial := manager.ProviderAuthorityBlob()

	require.Eventually(t, func() bool {
		return !bytes.Equal(initial, manager.ProviderAuthorityBlob())
	}, 5*time.Second, 10*time.Millisecond)

	// The renewed blob still parses and verifies.
	authority := parseProviderBlob(t, manager.ProviderAuthorityBlob())
	require.NoError(t, authority.Signature.VerifyTrust(provider.caCert))
}

func TestManagerUpdateProviderSigner(t *testing.T) {
	provider := newTestProvider(t, "Test Bank")

	manager, err := NewManager(testManagerConfig(t, provider, time.Hour))
	require.NoError(t, err)

	defer manager.Stop()

	rollover := newTestProvider(t, "Test Bank")
	require.NoError(t, manager.UpdateProviderSigner(rollover.signer))

	authority := parseProviderBlob(t, manager.ProviderAuthorityBlob())
	require.NoError(t, authority.Signature.VerifyTrust(rollover.caCert))
	require.Error(t, authority.Signature.VerifyTrust(provider.caCert))
}

func TestManagerRejectsZeroExpiry(t *testing.T) {
	provider := newTestProvider(t, "Test Bank")

	_, err := NewManager(testManagerConfig(t, provider, 0))
	require.Error(t, err)
}

// authorityServer publishes manager blobs the way a provider's HTTP frontend
// would, counting the fetches it serves. The manager is looked up through a
// getter because it can only be built once the server URL is known.
func authorityServer(t *testing.T, getManager func() *Manager) (*httptest.Server, *int32) {
	t.Helper()

	var hits int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)

		var blob []byte

		switch {
		case r.URL.Path == "/authority":
			blob = getManager().ProviderAuthorityBlob()
		case strings.HasPrefix(r.URL.Path, "/payees/"):
			var ok bool

			blob, ok = getManager().PayeeAuthorityBlob(strings.TrimPrefix(r.URL.Path, "/payees/"))
			if !ok {
				http.NotFound(w, r)

				return
			}
		default:
			http.NotFound(w, r)

			return
		}

		w.Header().Set("Content-Type", saturn.ContentType)
		_, _ = w.Write(blob)
	}))

	t.Cleanup(server.Close)

	return server, &hits
}

// serverManagerConfig builds a manager whose published URLs point at the
// given base URL, so that the URL checks in the parsers line up with where
// the test server actually serves the blobs.
func serverManagerConfig(t *testing.T, provider *testProvider, baseURL string) ManagerConfig {
	cfg := testManagerConfig(t, provider, time.Hour)
	cfg.ProviderData.AuthorityURL = baseURL + "/authority"
	cfg.PayeeAuthorityBaseURL = baseURL + "/payees"
	cfg.Payees[0].LocalPayeeID = "86344"

	return cfg
}

func TestClientFetchAndCache(t *testing.T) {
	provider := newTestProvider(t, "Test Bank")

	var manager *Manager

	server, hits := authorityServer(t, func() *Manager { return manager })

	cfg := serverManagerConfig(t, provider, server.URL)

	manager, err := NewManager(cfg)
	require.NoError(t, err)

	defer manager.Stop()

	client := NewClient()
	ctx := context.Background()

	authority, err := client.ProviderAuthority(ctx, cfg.ProviderData.AuthorityURL, false)
	require.NoError(t, err)
	require.NoError(t, authority.Signature.VerifyTrust(provider.caCert))
	require.EqualValues(t, 1, atomic.LoadInt32(hits))

	// Second lookup is served from the cache.
	cached, err := client.ProviderAuthority(ctx, cfg.ProviderData.AuthorityURL, false)
	require.NoError(t, err)
	require.Same(t, authority, cached)
	require.EqualValues(t, 1, atomic.LoadInt32(hits))

	// A forced lookup goes back to the network.
	_, err = client.ProviderAuthority(ctx, cfg.ProviderData.AuthorityURL, true)
	require.NoError(t, err)
	require.EqualValues(t, 2, atomic.LoadInt32(hits))

	payee, err := client.PayeeAuthority(ctx, manager.PayeeAuthorityURL("86344"), false)
	require.NoError(t, err)
	require.NoError(t, authority.CheckPayeeKey(payee))

	// Querying a cached provider URL through the payee method must fall
	// through to a fetch and fail on the qualifier, not trip over the
	// cached entry's type.
	before := atomic.LoadInt32(hits)

	_, err = client.PayeeAuthority(ctx, cfg.ProviderData.AuthorityURL, false)
	require.Error(t, err)
	require.Equal(t, saturn.SchemaFault, saturn.Classify(err))
	require.EqualValues(t, before+1, atomic.LoadInt32(hits))
}

func TestClientErrorMapping(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong content type", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				_, _ = w.Write([]byte("<html></html>"))
			}))
		defer server.Close()

		_, err := NewClient().ProviderAuthority(ctx, server.URL, false)
		require.Error(t, err)
		require.Equal(t, saturn.SchemaFault, saturn.Classify(err))
	})

	t.Run("not found", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		_, err := NewClient().ProviderAuthority(ctx, server.URL, false)
		require.Error(t, err)
		require.Equal(t, saturn.IOFault, saturn.Classify(err))
	})

	t.Run("unreachable", func(t *testing.T) {
		_, err := NewClient().ProviderAuthority(ctx, "http://127.0.0.1:1/authority", false)
		require.Error(t, err)
		require.Equal(t, saturn.IOFault, saturn.Classify(err))
	})
}
