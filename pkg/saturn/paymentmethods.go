/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package saturn

import "github.com/webpki/saturn-go/pkg/doc/json"

// PaymentMethod is a payment network identified by a URL. Card networks need
// a two-phase (reserve then finalize) flow while account-to-account networks
// complete in a single transaction round.
type PaymentMethod int

// The supported payment methods.
const (
	MethodSuperCard PaymentMethod = iota
	MethodBankDirect
	MethodUnusualCard
)

type paymentMethodInfo struct {
	url         string
	commonName  string
	cardPayment bool
}

var paymentMethods = map[PaymentMethod]paymentMethodInfo{
	MethodSuperCard:   {url: "https://supercard.com", commonName: "SuperCard", cardPayment: true},
	MethodBankDirect:  {url: "https://banknet2.org", commonName: "Bank Direct", cardPayment: false},
	MethodUnusualCard: {url: "https://unusualcard.com", commonName: "UnusualCard", cardPayment: true},
}

// URL returns the method identifier used on the wire.
func (m PaymentMethod) URL() string {
	return paymentMethods[m].url
}

// CommonName returns the human readable name of the payment network.
func (m PaymentMethod) CommonName() string {
	return paymentMethods[m].commonName
}

// CardPayment reports whether the method is a card network, requiring the
// reserve plus finalize flow through an acquirer.
func (m PaymentMethod) CardPayment() bool {
	return paymentMethods[m].cardPayment
}

func (m PaymentMethod) String() string {
	return m.URL()
}

// PaymentMethodFromURL maps a wire method identifier to a PaymentMethod.
func PaymentMethodFromURL(url string) (PaymentMethod, error) {
	for method, info := range paymentMethods {
		if info.url == url {
			return method, nil
		}
	}

	return 0, json.NewSchemaError("unknown payment method: %s", url)
}
