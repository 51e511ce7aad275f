/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package saturn

// ContextURI is the fixed protocol context every Saturn message envelope
// carries.
const ContextURI = "http://webpki.org/saturn/v3"

// ContentType is the wire content type of Saturn messages.
const ContentType = "application/json"

// JSON property names of the Saturn vocabulary. These are the stable wire
// contract and must not change.
const (
	contextProperty                 = "@context"
	qualifierProperty               = "@qualifier"
	commonNameProperty              = "commonName"
	nameProperty                    = "name"
	versionProperty                 = "version"
	softwareProperty                = "software"
	amountProperty                  = "amount"
	currencyProperty                = "currency"
	nonDirectPaymentProperty        = "nonDirectPayment"
	referenceIDProperty             = "referenceId"
	timeStampProperty               = "timeStamp"
	expiresProperty                 = "expires"
	payeeProperty                   = "payee"
	idProperty                      = "id"
	typeProperty                    = "type"
	subTypeProperty                 = "subType"
	fixedProperty                   = "fixed"
	intervalProperty                = "interval"
	installmentsProperty            = "installments"
	paymentRequestProperty          = "paymentRequest"
	paymentMethodProperty           = "paymentMethod"
	paymentMethodsProperty          = "paymentMethods"
	recipientURLProperty            = "recepientUrl"
	authorityURLProperty            = "authorityUrl"
	serviceURLProperty              = "serviceUrl"
	providerAuthorityURLProperty    = "providerAuthorityUrl"
	payeeAuthorityURLProperty       = "payeeAuthorityUrl"
	homePageProperty                = "homePage"
	logotypeURLProperty             = "logotypeUrl"
	hostingProvidersProperty        = "hostingProviders"
	hostingURLProperty              = "hostingUrl"
	testModeProperty                = "testMode"
	clientIPAddressProperty         = "clientIpAddress"
	logDataProperty                 = "logData"
	domainNameProperty              = "domainName"
	requestHashProperty             = "requestHash"
	algorithmProperty               = "algorithm"
	valueProperty                   = "value"
	publicKeyProperty               = "publicKey"
	encryptedAuthorizationProperty  = "encryptedAuthorization"
	encryptedAccountDataProperty    = "encryptedAccountData"
	requestSignatureProperty        = "requestSignature"
	authorizationSignatureProperty  = "authorizationSignature"
	issuerSignatureProperty         = "issuerSignature"
	accountIDProperty               = "accountId"
	credentialIDProperty            = "credentialId"
	accountReferenceProperty        = "accountReference"
	accountHolderProperty           = "accountHolder"
	accountSecurityCodeProperty     = "accountSecurityCode"
	payerAccountProperty            = "payerAccount"
	localPayeeIDProperty            = "localPayeeId"
	accountVerifierProperty         = "accountVerifier"
	hashedPayeeAccountsProperty     = "hashedPayeeAccounts"
	signatureParametersProperty     = "signatureParameters"
	signatureProfilesProperty       = "signatureProfiles"
	encryptionParametersProperty    = "encryptionParameters"
	dataEncryptionAlgorithmProperty = "dataEncryptionAlgorithm"
	keyEncryptionAlgorithmProperty  = "keyEncryptionAlgorithm"
	errorCodeProperty               = "errorCode"
	descriptionProperty             = "description"
	field1Property                  = "field1"
	field2Property                  = "field2"
	field3Property                  = "field3"
)
