/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package saturn

import (
	"crypto"
	"strings"
	"time"

	"github.com/webpki/saturn-go/pkg/crypto/hybrid"
	"github.com/webpki/saturn-go/pkg/crypto/keys"
	"github.com/webpki/saturn-go/pkg/crypto/signatures"
	"github.com/webpki/saturn-go/pkg/doc/json"
)

// EncryptionParameter is one encryption key a provider publishes for
// wallets and peers to encrypt data to.
type EncryptionParameter struct {
	ContentAlgorithm hybrid.ContentEncryptionAlgorithm
	KeyAlgorithm     hybrid.KeyEncryptionAlgorithm
	PublicKey        crypto.PublicKey
}

// ProviderAuthorityData is the provider input to EncodeProviderAuthority.
type ProviderAuthorityData struct {
	AuthorityURL         string
	CommonName           string
	HomePage             string
	LogotypeURL          string
	ServiceURL           string
	PaymentMethods       []PaymentMethod
	SignatureProfiles    []signatures.Algorithm
	EncryptionParameters []EncryptionParameter
	HostingProviders     []*HostingProvider // optional
	TimeStamp            time.Time
	Expires              time.Time
}

// EncodeProviderAuthority builds the provider's signed self-description.
func EncodeProviderAuthority(data *ProviderAuthorityData,
	signer *signatures.X509Signer) (*json.Object, error) {
	wr := CreateBaseMessage(MsgProviderAuthority)

	wr.SetString(authorityURLProperty, data.AuthorityURL).
		SetString(commonNameProperty, data.CommonName).
		SetString(homePageProperty, data.HomePage).
		SetString(logotypeURLProperty, data.LogotypeURL).
		SetString(serviceURLProperty, data.ServiceURL)

	methods := make([]string, 0, len(data.PaymentMethods))
	for _, method := range data.PaymentMethods {
		methods = append(methods, method.URL())
	}

	wr.SetStringArray(paymentMethodsProperty, methods)

	profiles := make([]string, 0, len(data.SignatureProfiles))
	for _, profile := range data.SignatureProfiles {
		profiles = append(profiles, profile.ID())
	}

	wr.SetStringArray(signatureProfilesProperty, profiles)

	params := make([]*json.Object, 0, len(data.EncryptionParameters))

	for _, param := range data.EncryptionParameters {
		jwk, err := keys.WritePublicKey(param.PublicKey)
		if err != nil {
			return nil, err
		}

		params = append(params, json.NewObject().
			SetString(dataEncryptionAlgorithmProperty, string(param.ContentAlgorithm)).
			SetString(keyEncryptionAlgorithmProperty, string(param.KeyAlgorithm)).
			SetObject(publicKeyProperty, jwk))
	}

	wr.SetObjectArray(encryptionParametersProperty, params)

	if len(data.HostingProviders) > 0 {
		hostings := make([]*json.Object, 0, len(data.HostingProviders))

		for _, hosting := range data.HostingProviders {
			obj, err := hosting.encode()
			if err != nil {
				return nil, err
			}

			hostings = append(hostings, obj)
		}

		wr.SetObjectArray(hostingProvidersProperty, hostings)
	}

	wr.SetDateTime(timeStampProperty, data.TimeStamp, true).
		SetDateTime(expiresProperty, data.Expires, true)

	if err := signatures.Sign(wr, issuerSignatureProperty, signer); err != nil {
		return nil, err
	}

	return wr, nil
}

// ProviderAuthority is a decoded and verified provider authority object.
type ProviderAuthority struct {
	AuthorityURL         string
	CommonName           string
	HomePage             string
	LogotypeURL          string
	ServiceURL           string
	PaymentMethods       []PaymentMethod
	SignatureProfiles    []signatures.Algorithm
	EncryptionParameters []EncryptionParameter
	HostingProviders     []*HostingProvider
	TimeStamp            time.Time
	Expires              time.Time

	// Signature is the provider's certificate path signature. Callers
	// anchor it in their trust store with VerifyTrust.
	Signature *signatures.Decoded

	root *json.Reader
}

// ParseProviderAuthority decodes a provider authority object and checks
// that it was fetched from the URL it claims to describe.
func ParseProviderAuthority(rd *json.Reader, expectedAuthorityURL string) (*ProviderAuthority, error) {
	if err := ParseBaseMessage(MsgProviderAuthority, rd); err != nil {
		return nil, err
	}

	authority := &ProviderAuthority{root: rd}

	var err error

	if authority.AuthorityURL, err = rd.GetString(authorityURLProperty); err != nil {
		return nil, err
	}

	if expectedAuthorityURL != "" && authority.AuthorityURL != expectedAuthorityURL {
		return nil, json.NewSchemaError("authority url %s does not match the fetch url %s",
			authority.AuthorityURL, expectedAuthorityURL)
	}

	if authority.CommonName, err = rd.GetString(commonNameProperty); err != nil {
		return nil, err
	}

	if authority.HomePage, err = rd.GetString(homePageProperty); err != nil {
		return nil, err
	}

	if authority.LogotypeURL, err = rd.GetString(logotypeURLProperty); err != nil {
		return nil, err
	}

	if authority.ServiceURL, err = rd.GetString(serviceURLProperty); err != nil {
		return nil, err
	}

	methods, err := rd.GetStringArray(paymentMethodsProperty)
	if err != nil {
		return nil, err
	}

	for _, methodURL := range methods {
		method, err := PaymentMethodFromURL(methodURL)
		if err != nil {
			return nil, err
		}

		authority.PaymentMethods = append(authority.PaymentMethods, method)
	}

	profiles, err := rd.GetStringArray(signatureProfilesProperty)
	if err != nil {
		return nil, err
	}

	for _, profileID := range profiles {
		profile, err := signatures.AlgorithmFromID(profileID)
		if err != nil {
			return nil, err
		}

		authority.SignatureProfiles = append(authority.SignatureProfiles, profile)
	}

	if err = parseEncryptionParameters(rd, authority); err != nil {
		return nil, err
	}

	if rd.HasProperty(hostingProvidersProperty) {
		hostingsRd, err := rd.GetArray(hostingProvidersProperty)
		if err != nil {
			return nil, err
		}

		for hostingsRd.HasMore() {
			hostingRd, err := hostingsRd.GetObject()
			if err != nil {
				return nil, err
			}

			hosting, err := parseHostingProvider(hostingRd)
			if err != nil {
				return nil, err
			}

			authority.HostingProviders = append(authority.HostingProviders, hosting)
		}
	}

	if authority.TimeStamp, err = rd.GetDateTime(timeStampProperty); err != nil {
		return nil, err
	}

	if authority.Expires, err = rd.GetDateTime(expiresProperty); err != nil {
		return nil, err
	}

	if authority.Signature, err = signatures.Decode(rd, issuerSignatureProperty,
		signatures.RequireCertificatePath); err != nil {
		return nil, err
	}

	if err := rd.CheckForUnread(); err != nil {
		return nil, err
	}

	return authority, nil
}

func parseEncryptionParameters(rd *json.Reader, authority *ProviderAuthority) error {
	paramsRd, err := rd.GetArray(encryptionParametersProperty)
	if err != nil {
		return err
	}

	for paramsRd.HasMore() {
		paramRd, err := paramsRd.GetObject()
		if err != nil {
			return err
		}

		var param EncryptionParameter

		contentAlg, err := paramRd.GetString(dataEncryptionAlgorithmProperty)
		if err != nil {
			return err
		}

		param.ContentAlgorithm = hybrid.ContentEncryptionAlgorithm(contentAlg)
		if !hybrid.PermittedContentEncryptionAlgorithm(param.ContentAlgorithm) {
			return json.NewSchemaError("unsupported data encryption algorithm: %s", contentAlg)
		}

		keyAlg, err := paramRd.GetString(keyEncryptionAlgorithmProperty)
		if err != nil {
			return err
		}

		param.KeyAlgorithm = hybrid.KeyEncryptionAlgorithm(keyAlg)
		if !hybrid.PermittedKeyEncryptionAlgorithm(param.KeyAlgorithm) {
			return json.NewSchemaError("unsupported key encryption algorithm: %s", keyAlg)
		}

		jwkRd, err := paramRd.GetObject(publicKeyProperty)
		if err != nil {
			return err
		}

		if param.PublicKey, err = keys.ParsePublicKey(jwkRd); err != nil {
			return err
		}

		authority.EncryptionParameters = append(authority.EncryptionParameters, param)
	}

	if len(authority.EncryptionParameters) == 0 {
		return json.NewSchemaError("empty %s", encryptionParametersProperty)
	}

	return nil
}

// Root exposes the underlying document.
func (p *ProviderAuthority) Root() *json.Reader {
	return p.root
}

// SelectEncryptionParameter picks the first published encryption key usable
// with the caller's supported algorithms.
func (p *ProviderAuthority) SelectEncryptionParameter(
	keyAlgs []hybrid.KeyEncryptionAlgorithm) (*EncryptionParameter, error) {
	for i := range p.EncryptionParameters {
		for _, alg := range keyAlgs {
			if p.EncryptionParameters[i].KeyAlgorithm == alg {
				return &p.EncryptionParameters[i], nil
			}
		}
	}

	return nil, json.NewSchemaError("no matching encryption parameter at %s", p.AuthorityURL)
}

// CheckPayeeKey verifies a payee authority attestation against this
// provider authority: either the payee object was signed with the
// provider's own certificate key, or it was published by one of the
// provider's hosting providers, in which case the payee authority URL must
// live under the hosting URL and the attestation key must be the hosting
// provider's.
func (p *ProviderAuthority) CheckPayeeKey(payee *PayeeAuthority) error {
	providerKey := p.Signature.CertificatePath[0].PublicKey
	if keys.Equal(payee.AttestationKey, providerKey) {
		return nil
	}

	for _, hosting := range p.HostingProviders {
		if !strings.HasPrefix(payee.AuthorityURL, hosting.HostingURL) {
			continue
		}

		if keys.Equal(payee.AttestationKey, hosting.PublicKey) {
			return nil
		}

		return integrityErrorf("payee authority %s not attested by its hosting provider",
			payee.AuthorityURL)
	}

	return integrityErrorf("payee authority %s not attested by provider %s",
		payee.AuthorityURL, p.AuthorityURL)
}
