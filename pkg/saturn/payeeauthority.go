/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package saturn

import (
	"crypto"
	"time"

	"github.com/webpki/saturn-go/pkg/crypto/signatures"
	"github.com/webpki/saturn-go/pkg/doc/json"
)

// PayeeAuthorityData is the provider (or hosting provider) input to
// EncodePayeeAuthority.
type PayeeAuthorityData struct {
	AuthorityURL         string
	ProviderAuthorityURL string
	Core                 *PayeeCoreProperties
	TimeStamp            time.Time
	Expires              time.Time
}

// EncodePayeeAuthority builds a signed payee authority object. The signer
// key is the attestation key that relying parties check against the
// provider authority.
func EncodePayeeAuthority(data *PayeeAuthorityData,
	signer *signatures.KeySigner) (*json.Object, error) {
	wr := CreateBaseMessage(MsgPayeeAuthority)

	wr.SetString(authorityURLProperty, data.AuthorityURL).
		SetString(providerAuthorityURLProperty, data.ProviderAuthorityURL)

	if err := data.Core.write(wr); err != nil {
		return nil, err
	}

	wr.SetDateTime(timeStampProperty, data.TimeStamp, true).
		SetDateTime(expiresProperty, data.Expires, true)

	if err := signatures.Sign(wr, issuerSignatureProperty, signer); err != nil {
		return nil, err
	}

	return wr, nil
}

// PayeeAuthority is a decoded and verified payee authority object.
type PayeeAuthority struct {
	AuthorityURL         string
	ProviderAuthorityURL string
	Core                 *PayeeCoreProperties
	TimeStamp            time.Time
	Expires              time.Time

	// AttestationKey is the verified key the object was signed with. It
	// proves nothing until checked against the provider authority.
	AttestationKey crypto.PublicKey

	root *json.Reader
}

// ParsePayeeAuthority decodes a payee authority object and checks that it
// was fetched from the URL it claims to describe.
func ParsePayeeAuthority(rd *json.Reader, expectedAuthorityURL string) (*PayeeAuthority, error) {
	if err := ParseBaseMessage(MsgPayeeAuthority, rd); err != nil {
		return nil, err
	}

	authority := &PayeeAuthority{root: rd}

	var err error

	if authority.AuthorityURL, err = rd.GetString(authorityURLProperty); err != nil {
		return nil, err
	}

	if expectedAuthorityURL != "" && authority.AuthorityURL != expectedAuthorityURL {
		return nil, json.NewSchemaError("authority url %s does not match the fetch url %s",
			authority.AuthorityURL, expectedAuthorityURL)
	}

	if authority.ProviderAuthorityURL, err = rd.GetString(providerAuthorityURLProperty); err != nil {
		return nil, err
	}

	if authority.Core, err = parsePayeeCoreProperties(rd); err != nil {
		return nil, err
	}

	if authority.TimeStamp, err = rd.GetDateTime(timeStampProperty); err != nil {
		return nil, err
	}

	if authority.Expires, err = rd.GetDateTime(expiresProperty); err != nil {
		return nil, err
	}

	decoded, err := signatures.Decode(rd, issuerSignatureProperty, signatures.RequirePublicKey)
	if err != nil {
		return nil, err
	}

	authority.AttestationKey = decoded.PublicKey

	if err := rd.CheckForUnread(); err != nil {
		return nil, err
	}

	return authority, nil
}

// Root exposes the underlying document.
func (p *PayeeAuthority) Root() *json.Reader {
	return p.root
}
