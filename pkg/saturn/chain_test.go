/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package saturn

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/webpki/saturn-go/pkg/crypto/hybrid"
	"github.com/webpki/saturn-go/pkg/crypto/signatures"
	"github.com/webpki/saturn-go/pkg/doc/json"
)

// chainActors holds the keys of every party in a payment scenario.
type chainActors struct {
	payeeSigner  *signatures.KeySigner
	walletSigner *signatures.KeySigner

	providerSigner *signatures.X509Signer
	providerCA     *x509.Certificate
	acquirerSigner *signatures.X509Signer

	providerEncKey *ecdsa.PrivateKey
	acquirerEncKey *ecdsa.PrivateKey
}

func newChainActors(t *testing.T) *chainActors {
	t.Helper()

	providerSigner, providerCA := newTestX509Signer(t, "Test Bank")
	acquirerSigner, _ := newTestX509Signer(t, "Test Acquirer")

	return &chainActors{
		payeeSigner:    newTestKeySigner(t),
		walletSigner:   newTestKeySigner(t),
		providerSigner: providerSigner,
		providerCA:     providerCA,
		acquirerSigner: acquirerSigner,
		providerEncKey: newECKey(t),
		acquirerEncKey: newECKey(t),
	}
}

func (a *chainActors) providerDecryptionKeys() []hybrid.DecryptionKey {
	return []hybrid.DecryptionKey{{
		PublicKey:              &a.providerEncKey.PublicKey,
		PrivateKey:             a.providerEncKey,
		KeyEncryptionAlgorithm: hybrid.ECDHES,
	}}
}

func (a *chainActors) acquirerDecryptionKeys() []hybrid.DecryptionKey {
	return []hybrid.DecryptionKey{{
		PublicKey:              &a.acquirerEncKey.PublicKey,
		PrivateKey:             a.acquirerEncKey,
		KeyEncryptionAlgorithm: hybrid.ECDHES,
	}}
}

func newECKey(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	return key
}

func newTestKeySigner(t *testing.T) *signatures.KeySigner {
	t.Helper()

	signer, err := signatures.NewKeySigner(signatures.ES256, newECKey(t))
	require.NoError(t, err)

	return signer
}

func newTestX509Signer(t *testing.T, name string) (*signatures.X509Signer, *x509.Certificate) {
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

	return signer, caCert
}

func reparse(t *testing.T, obj *json.Object) *json.Reader {
	t.Helper()

	data, err := obj.Normalized()
	require.NoError(t, err)

	rd, err := json.Parse(data)
	require.NoError(t, err)

	return rd
}

func testPaymentRequest(t *testing.T, actors *chainActors, amount string) *PaymentRequest {
	t.Helper()

	obj, err := EncodePaymentRequest(&PaymentRequestData{
		Payee:       Payee{CommonName: "Space Shop", ID: "86344"},
		Amount:      decimal.RequireFromString(amount),
		Currency:    USD,
		ReferenceID: "20260831-100-1",
		TimeStamp:   time.Now(),
		Expires:     ExpiresInMinutes(30),
		Software:    Software{Name: SoftwareNamePayee, Version: Version},
	}, actors.payeeSigner)
	require.NoError(t, err)

	request, err := ParsePaymentRequest(reparse(t, obj))
	require.NoError(t, err)

	return request
}

func testWalletAuthorization(t *testing.T, actors *chainActors, request *PaymentRequest,
	method PaymentMethod) *json.Object {
	t.Helper()

	authData, err := EncodeAuthorizationData(&AuthorizationDataInput{
		PaymentRequest: request,
		PaymentMethod:  method,
		DomainName:     "spaceshop.com",
		PayerAccount: AccountDescriptor{
			TypeURI: method.URL(),
			ID:      "6875056745552109",
			Fields:  []string{"05", "2028"},
		},
		CredentialID: "1034567890",
		TimeStamp:    time.Now(),
		Software:     Software{Name: SoftwareNameWallet, Version: Version},
	}, actors.walletSigner)
	require.NoError(t, err)

	encrypted, err := hybrid.Encrypt(authData, hybrid.A128CBCHS256, hybrid.ECDHES,
		&actors.providerEncKey.PublicKey)
	require.NoError(t, err)

	return encrypted
}

func testAuthorizationRequest(t *testing.T, actors *chainActors,
	request *PaymentRequest, encryptedAuth *json.Object) *AuthorizationRequest {
	t.Helper()

	obj, err := EncodeAuthorizationRequest(&AuthorizationRequestData{
		TestMode:               true,
		RecipientURL:           "https://bank.example.com/service",
		PayeeAuthorityURL:      "https://bank.example.com/payees/86344",
		PaymentMethod:          MethodSuperCard,
		PaymentRequest:         request,
		EncryptedAuthorization: encryptedAuth,
		ClientIPAddress:        "203.0.113.7",
		ReferenceID:            NewReferenceID(),
		TimeStamp:              time.Now(),
		Software:               Software{Name: SoftwareNamePayee, Version: Version},
	}, actors.payeeSigner)
	require.NoError(t, err)

	parsed, err := ParseAuthorizationRequest(reparse(t, obj))
	require.NoError(t, err)

	return parsed
}

func testAuthorizationResponse(t *testing.T, actors *chainActors,
	request *AuthorizationRequest) *AuthorizationResponse {
	t.Helper()

	obj, err := EncodeAuthorizationResponse(&AuthorizationResponseData{
		AuthorizationRequest: request,
		AccountReference:     "*2109",
		ReferenceID:          NewReferenceID(),
		TimeStamp:            time.Now(),
		Software:             Software{Name: SoftwareNameProvider, Version: Version},
		ProtectedAccountData: &ProtectedAccountData{
			Account: AccountDescriptor{
				TypeURI: MethodSuperCard.URL(),
				ID:      "6875056745552109",
			},
			AccountHolder: "Luke Skywalker",
			Expires:       ExpiresInDays(365),
			SecurityCode:  "953",
		},
		ContentAlgorithm: hybrid.A128CBCHS256,
		KeyAlgorithm:     hybrid.ECDHES,
		EncryptionKey:    &actors.acquirerEncKey.PublicKey,
	}, actors.providerSigner)
	require.NoError(t, err)

	parsed, err := ParseAuthorizationResponse(reparse(t, obj))
	require.NoError(t, err)

	return parsed
}

func testTransactionResponse(t *testing.T, actors *chainActors,
	authResponse *AuthorizationResponse, amount string) *TransactionResponse {
	t.Helper()

	txObj, err := EncodeTransactionRequest(&TransactionRequestData{
		AuthorizationResponse: authResponse,
		RecipientURL:          "https://acquirer.example.com/service",
		Amount:                decimal.RequireFromString(amount),
		ReferenceID:           NewReferenceID(),
		TimeStamp:             time.Now(),
		Software:              Software{Name: SoftwareNamePayee, Version: Version},
	}, actors.payeeSigner)
	require.NoError(t, err)

	cardNetwork := true

	txRequest, err := ParseTransactionRequest(reparse(t, txObj), &cardNetwork)
	require.NoError(t, err)

	respObj, err := EncodeTransactionResponse(&TransactionResponseData{
		TransactionRequest: txRequest,
		LogData:            "reservation #4561",
		ReferenceID:        NewReferenceID(),
		TimeStamp:          time.Now(),
		Software:           Software{Name: SoftwareNameAcquirer, Version: Version},
	}, actors.acquirerSigner)
	require.NoError(t, err)

	response, err := ParseTransactionResponse(reparse(t, respObj))
	require.NoError(t, err)

	return response
}

func TestFullCardPaymentChain(t *testing.T) {
	actors := newChainActors(t)

	paymentRequest := testPaymentRequest(t, actors, "200.00")
	encryptedAuth := testWalletAuthorization(t, actors, paymentRequest, MethodSuperCard)
	authRequest := testAuthorizationRequest(t, actors, paymentRequest, encryptedAuth)

	require.True(t, authRequest.TestMode)
	require.Equal(t, MethodSuperCard, authRequest.PaymentMethod)
	require.Equal(t, "20260831-100-1", authRequest.PaymentRequest.ReferenceID)

	// Provider side: open and check the wallet consent.
	authData, err := authRequest.DecryptAuthorization(actors.providerDecryptionKeys())
	require.NoError(t, err)
	require.Equal(t, "6875056745552109", authData.PayerAccount.ID)
	require.Equal(t, "1034567890", authData.CredentialID)

	keyHash, err := authData.KeyHash()
	require.NoError(t, err)
	require.Len(t, keyHash, 32)

	authResponse := testAuthorizationResponse(t, actors, authRequest)
	require.NoError(t, authResponse.Signature.VerifyTrust(actors.providerCA))

	// Acquirer side: the account data was encrypted for us alone.
	protected, err := authResponse.DecryptAccountData(actors.acquirerDecryptionKeys())
	require.NoError(t, err)
	require.Equal(t, "Luke Skywalker", protected.AccountHolder)
	require.Equal(t, "953", protected.SecurityCode)

	txResponse := testTransactionResponse(t, actors, authResponse, "180.00")
	require.Equal(t, "180.00", txResponse.TransactionRequest.Amount.StringFixed(2))
	require.True(t, txResponse.TransactionRequest.TestMode())

	// Capture a part of the reserved amount.
	finObj, err := EncodeFinalizeRequest(&FinalizeRequestData{
		TransactionResponse: txResponse,
		Amount:              decimal.RequireFromString("175.50"),
		ReferenceID:         NewReferenceID(),
		TimeStamp:           time.Now(),
		Software:            Software{Name: SoftwareNamePayee, Version: Version},
	}, actors.payeeSigner)
	require.NoError(t, err)

	finRequest, err := ParseFinalizeRequest(reparse(t, finObj))
	require.NoError(t, err)

	finRespObj, err := EncodeFinalizeResponse(&FinalizeResponseData{
		FinalizeRequest: finRequest,
		ReferenceID:     NewReferenceID(),
		TimeStamp:       time.Now(),
		Software:        Software{Name: SoftwareNameAcquirer, Version: Version},
	}, actors.acquirerSigner)
	require.NoError(t, err)

	finResponse, err := ParseFinalizeResponse(reparse(t, finRespObj))
	require.NoError(t, err)
	require.Equal(t, "175.50", finResponse.FinalizeRequest.Amount.StringFixed(2))
	require.Equal(t, "200.00", finResponse.FinalizeRequest.PaymentRequest().Amount.StringFixed(2))
}

func TestRefundChain(t *testing.T) {
	actors := newChainActors(t)

	paymentRequest := testPaymentRequest(t, actors, "49.50")
	encryptedAuth := testWalletAuthorization(t, actors, paymentRequest, MethodSuperCard)
	authRequest := testAuthorizationRequest(t, actors, paymentRequest, encryptedAuth)
	authResponse := testAuthorizationResponse(t, actors, authRequest)

	refundObj, err := EncodeRefundRequest(&RefundRequestData{
		AuthorizationResponse: authResponse,
		RecipientURL:          "https://bank.example.com/service",
		Amount:                decimal.RequireFromString("20.00"),
		ReferenceID:           NewReferenceID(),
		TimeStamp:             time.Now(),
		Software:              Software{Name: SoftwareNamePayee, Version: Version},
	}, actors.payeeSigner)
	require.NoError(t, err)

	refundRequest, err := ParseRefundRequest(reparse(t, refundObj))
	require.NoError(t, err)

	respObj, err := EncodeRefundResponse(&RefundResponseData{
		RefundRequest: refundRequest,
		ReferenceID:   NewReferenceID(),
		TimeStamp:     time.Now(),
		Software:      Software{Name: SoftwareNameProvider, Version: Version},
	}, actors.providerSigner)
	require.NoError(t, err)

	refundResponse, err := ParseRefundResponse(reparse(t, respObj))
	require.NoError(t, err)
	require.Equal(t, "20.00", refundResponse.RefundRequest.Amount.StringFixed(2))

	t.Run("refund above paid amount refused", func(t *testing.T) {
		obj, err := EncodeRefundRequest(&RefundRequestData{
			AuthorizationResponse: authResponse,
			RecipientURL:          "https://bank.example.com/service",
			Amount:                decimal.RequireFromString("50.00"),
			ReferenceID:           NewReferenceID(),
			TimeStamp:             time.Now(),
			Software:              Software{Name: SoftwareNamePayee, Version: Version},
		}, actors.payeeSigner)
		require.NoError(t, err)

		_, err = ParseRefundRequest(reparse(t, obj))
		require.Error(t, err)
		require.Equal(t, BusinessFault, Classify(err))
	})
}

func TestAmountCeilings(t *testing.T) {
	actors := newChainActors(t)

	paymentRequest := testPaymentRequest(t, actors, "200.00")
	encryptedAuth := testWalletAuthorization(t, actors, paymentRequest, MethodSuperCard)
	authRequest := testAuthorizationRequest(t, actors, paymentRequest, encryptedAuth)
	authResponse := testAuthorizationResponse(t, actors, authRequest)

	t.Run("transaction above authorized amount", func(t *testing.T) {
		obj, err := EncodeTransactionRequest(&TransactionRequestData{
			AuthorizationResponse: authResponse,
			RecipientURL:          "https://acquirer.example.com/service",
			Amount:                decimal.RequireFromString("250.00"),
			ReferenceID:           NewReferenceID(),
			TimeStamp:             time.Now(),
			Software:              Software{Name: SoftwareNamePayee, Version: Version},
		}, actors.payeeSigner)
		require.NoError(t, err)

		_, err = ParseTransactionRequest(reparse(t, obj), nil)
		require.Error(t, err)
		require.Equal(t, BusinessFault, Classify(err))

		var businessErr *BusinessError
		require.ErrorAs(t, err, &businessErr)
		require.Equal(t, ErrNotAuthorized, businessErr.Code)
	})

	t.Run("capture above transaction amount", func(t *testing.T) {
		txResponse := testTransactionResponse(t, actors, authResponse, "180.00")

		obj, err := EncodeFinalizeRequest(&FinalizeRequestData{
			TransactionResponse: txResponse,
			Amount:              decimal.RequireFromString("190.00"),
			ReferenceID:         NewReferenceID(),
			TimeStamp:           time.Now(),
			Software:            Software{Name: SoftwareNamePayee, Version: Version},
		}, actors.payeeSigner)
		require.NoError(t, err)

		_, err = ParseFinalizeRequest(reparse(t, obj))
		require.Error(t, err)
		require.Equal(t, BusinessFault, Classify(err))
	})
}

func TestHashBindingEnforcement(t *testing.T) {
	actors := newChainActors(t)

	paymentRequest := testPaymentRequest(t, actors, "200.00")
	otherRequest := testPaymentRequest(t, actors, "999.00")

	// Consent bound to a different payment request than the one in the
	// message must be refused after decryption.
	encryptedAuth := testWalletAuthorization(t, actors, otherRequest, MethodSuperCard)
	authRequest := testAuthorizationRequest(t, actors, paymentRequest, encryptedAuth)

	_, err := authRequest.DecryptAuthorization(actors.providerDecryptionKeys())
	require.Error(t, err)
	require.Equal(t, CryptoFault, Classify(err))
	require.Contains(t, err.Error(), "different payment request")
}

func TestPaymentMethodMismatch(t *testing.T) {
	actors := newChainActors(t)

	paymentRequest := testPaymentRequest(t, actors, "200.00")
	encryptedAuth := testWalletAuthorization(t, actors, paymentRequest, MethodUnusualCard)
	authRequest := testAuthorizationRequest(t, actors, paymentRequest, encryptedAuth)

	_, err := authRequest.DecryptAuthorization(actors.providerDecryptionKeys())
	require.Error(t, err)
	require.Equal(t, CryptoFault, Classify(err))
}

func TestCardNetworkCompatibility(t *testing.T) {
	actors := newChainActors(t)

	paymentRequest := testPaymentRequest(t, actors, "10.00")
	encryptedAuth := testWalletAuthorization(t, actors, paymentRequest, MethodSuperCard)
	authRequest := testAuthorizationRequest(t, actors, paymentRequest, encryptedAuth)
	authResponse := testAuthorizationResponse(t, actors, authRequest)

	obj, err := EncodeTransactionRequest(&TransactionRequestData{
		AuthorizationResponse: authResponse,
		RecipientURL:          "https://bank.example.com/service",
		Amount:                decimal.RequireFromString("10.00"),
		ReferenceID:           NewReferenceID(),
		TimeStamp:             time.Now(),
		Software:              Software{Name: SoftwareNamePayee, Version: Version},
	}, actors.payeeSigner)
	require.NoError(t, err)

	accountToAccount := false

	_, err = ParseTransactionRequest(reparse(t, obj), &accountToAccount)
	require.Error(t, err)
	require.Equal(t, BusinessFault, Classify(err))
}

func TestSignerContinuity(t *testing.T) {
	actors := newChainActors(t)

	paymentRequest := testPaymentRequest(t, actors, "75.00")
	encryptedAuth := testWalletAuthorization(t, actors, paymentRequest, MethodSuperCard)

	// Outer message signed with a key other than the payment request key.
	rogue := newTestKeySigner(t)

	obj, err := EncodeAuthorizationRequest(&AuthorizationRequestData{
		RecipientURL:           "https://bank.example.com/service",
		PayeeAuthorityURL:      "https://bank.example.com/payees/86344",
		PaymentMethod:          MethodSuperCard,
		PaymentRequest:         paymentRequest,
		EncryptedAuthorization: encryptedAuth,
		ClientIPAddress:        "203.0.113.7",
		ReferenceID:            NewReferenceID(),
		TimeStamp:              time.Now(),
		Software:               Software{Name: SoftwareNamePayee, Version: Version},
	}, rogue)
	require.NoError(t, err)

	_, err = ParseAuthorizationRequest(reparse(t, obj))
	require.Error(t, err)
	require.Equal(t, CryptoFault, Classify(err))
	require.Contains(t, err.Error(), "different key")
}

func TestInjectedPropertyRejected(t *testing.T) {
	actors := newChainActors(t)

	paymentRequest := testPaymentRequest(t, actors, "60.00")

	data, err := paymentRequest.Root().Normalized()
	require.NoError(t, err)

	rd, err := json.Parse(data)
	require.NoError(t, err)

	rd.Object().SetString("surprise", "property")

	tampered, err := rd.Normalized()
	require.NoError(t, err)

	tamperedRd, err := json.Parse(tampered)
	require.NoError(t, err)

	_, err = ParsePaymentRequest(tamperedRd)
	require.Error(t, err)
	require.Equal(t, CryptoFault, Classify(err))
}

func TestConsistencyCheck(t *testing.T) {
	actors := newChainActors(t)

	request := testPaymentRequest(t, actors, "200.00")

	copyRd := reparse(t, request.Root().Object())

	same, err := ParsePaymentRequest(copyRd)
	require.NoError(t, err)
	require.NoError(t, request.ConsistencyCheck(same))

	other := testPaymentRequest(t, actors, "201.00")
	require.Error(t, request.ConsistencyCheck(other))
}

func TestWrongProviderCertificateOnFinalize(t *testing.T) {
	actors := newChainActors(t)

	paymentRequest := testPaymentRequest(t, actors, "90.00")
	encryptedAuth := testWalletAuthorization(t, actors, paymentRequest, MethodSuperCard)
	authRequest := testAuthorizationRequest(t, actors, paymentRequest, encryptedAuth)
	authResponse := testAuthorizationResponse(t, actors, authRequest)
	txResponse := testTransactionResponse(t, actors, authResponse, "90.00")

	finObj, err := EncodeFinalizeRequest(&FinalizeRequestData{
		TransactionResponse: txResponse,
		Amount:              decimal.RequireFromString("90.00"),
		ReferenceID:         NewReferenceID(),
		TimeStamp:           time.Now(),
		Software:            Software{Name: SoftwareNamePayee, Version: Version},
	}, actors.payeeSigner)
	require.NoError(t, err)

	finRequest, err := ParseFinalizeRequest(reparse(t, finObj))
	require.NoError(t, err)

	// Capture receipt signed by the provider instead of the acquirer that
	// signed the transaction receipt.
	finRespObj, err := EncodeFinalizeResponse(&FinalizeResponseData{
		FinalizeRequest: finRequest,
		ReferenceID:     NewReferenceID(),
		TimeStamp:       time.Now(),
		Software:        Software{Name: SoftwareNameProvider, Version: Version},
	}, actors.providerSigner)
	require.NoError(t, err)

	_, err = ParseFinalizeResponse(reparse(t, finRespObj))
	require.Error(t, err)
	require.Equal(t, CryptoFault, Classify(err))
}
