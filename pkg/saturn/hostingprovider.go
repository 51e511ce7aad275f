/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package saturn

import (
	"crypto"

	"github.com/webpki/saturn-go/pkg/crypto/keys"
	"github.com/webpki/saturn-go/pkg/doc/json"
)

// HostingProvider is a third party a provider has delegated payee authority
// publication to. Payee authority objects published under the hosting URL
// are attested with the hosting provider's key instead of the provider's
// own.
type HostingProvider struct {
	HomePage   string
	HostingURL string
	PublicKey  crypto.PublicKey
}

func (h *HostingProvider) encode() (*json.Object, error) {
	jwk, err := keys.WritePublicKey(h.PublicKey)
	if err != nil {
		return nil, err
	}

	wr := json.NewObject().
		SetString(homePageProperty, h.HomePage).
		SetString(hostingURLProperty, h.HostingURL).
		SetObject(publicKeyProperty, jwk)

	return wr, wr.Err()
}

func parseHostingProvider(rd *json.Reader) (*HostingProvider, error) {
	hosting := &HostingProvider{}

	var err error

	if hosting.HomePage, err = rd.GetString(homePageProperty); err != nil {
		return nil, err
	}

	if hosting.HostingURL, err = rd.GetString(hostingURLProperty); err != nil {
		return nil, err
	}

	jwkRd, err := rd.GetObject(publicKeyProperty)
	if err != nil {
		return nil, err
	}

	if hosting.PublicKey, err = keys.ParsePublicKey(jwkRd); err != nil {
		return nil, err
	}

	return hosting, nil
}
