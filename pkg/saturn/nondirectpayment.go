/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package saturn

import (
	"time"

	"github.com/webpki/saturn-go/pkg/doc/json"
)

// NonDirectPaymentType distinguishes the two non-direct payment flavors.
type NonDirectPaymentType string

// The non-direct payment types.
const (
	Reservation NonDirectPaymentType = "RESERVATION"
	Recurring   NonDirectPaymentType = "RECURRING"
)

// ReservationSubType qualifies what a reservation is for.
type ReservationSubType string

// The reservation sub types.
const (
	GasStation       ReservationSubType = "GAS_STATION"
	Booking          ReservationSubType = "BOOKING"
	Deposit          ReservationSubType = "DEPOSIT"
	ReservationOther ReservationSubType = "OTHER"
)

// RecurringInterval is the billing interval of a recurring payment.
// IntervalUnspecified means the parties agreed on the schedule out of band,
// in which case no installment count may be given.
type RecurringInterval string

// The recurring payment intervals.
const (
	IntervalUnspecified RecurringInterval = "UNSPECIFIED"
	IntervalWeekly      RecurringInterval = "WEEKLY"
	IntervalMonthly     RecurringInterval = "MONTHLY"
	IntervalQuarterly   RecurringInterval = "QUARTERLY"
	IntervalYearly      RecurringInterval = "YEARLY"
)

var (
	reservationSubTypes = map[ReservationSubType]bool{
		GasStation: true, Booking: true, Deposit: true, ReservationOther: true,
	}

	recurringIntervals = map[RecurringInterval]bool{
		IntervalUnspecified: true, IntervalWeekly: true, IntervalMonthly: true,
		IntervalQuarterly: true, IntervalYearly: true,
	}
)

// NonDirectPayment describes a payment that is not a plain one-shot direct
// debit: either a reservation to be finalized later, or a recurring
// agreement. Fixed tells whether the amount is exact or an upper bound.
type NonDirectPayment struct {
	Type         NonDirectPaymentType
	SubType      ReservationSubType // reservations only
	Expires      time.Time          // reservations only
	Interval     RecurringInterval  // recurring only
	Installments int                // recurring only, 0 when unspecified
	Fixed        bool
}

func (n *NonDirectPayment) validate() error {
	switch n.Type {
	case Reservation:
		if !reservationSubTypes[n.SubType] {
			return json.NewSchemaError("unknown reservation sub type: %s", n.SubType)
		}
	case Recurring:
		if !recurringIntervals[n.Interval] {
			return json.NewSchemaError("unknown recurring interval: %s", n.Interval)
		}

		// An installment count only makes sense on a known schedule.
		if (n.Installments == 0) != (n.Interval == IntervalUnspecified) {
			return json.NewSchemaError("installments and interval %s do not match", n.Interval)
		}
	default:
		return json.NewSchemaError("unknown non-direct payment type: %s", n.Type)
	}

	return nil
}

func writeNonDirectPayment(wr *json.Object, n *NonDirectPayment) error {
	if err := n.validate(); err != nil {
		return err
	}

	sub := json.NewObject().SetString(typeProperty, string(n.Type))

	if n.Type == Reservation {
		sub.SetString(subTypeProperty, string(n.SubType)).
			SetBoolean(fixedProperty, n.Fixed).
			SetDateTime(expiresProperty, n.Expires, true)
	} else {
		sub.SetString(intervalProperty, string(n.Interval))

		if n.Installments != 0 {
			sub.SetInt(installmentsProperty, n.Installments)
		}

		sub.SetBoolean(fixedProperty, n.Fixed)
	}

	wr.SetObject(nonDirectPaymentProperty, sub)

	return wr.Err()
}

func parseNonDirectPayment(rd *json.Reader) (*NonDirectPayment, error) {
	if !rd.HasProperty(nonDirectPaymentProperty) {
		return nil, nil
	}

	sub, err := rd.GetObject(nonDirectPaymentProperty)
	if err != nil {
		return nil, err
	}

	nonDirect := &NonDirectPayment{}

	paymentType, err := sub.GetString(typeProperty)
	if err != nil {
		return nil, err
	}

	nonDirect.Type = NonDirectPaymentType(paymentType)
	if nonDirect.Type != Reservation && nonDirect.Type != Recurring {
		return nil, json.NewSchemaError("unknown non-direct payment type: %s", paymentType)
	}

	if nonDirect.Type == Reservation {
		subType, err := sub.GetString(subTypeProperty)
		if err != nil {
			return nil, err
		}

		nonDirect.SubType = ReservationSubType(subType)

		if nonDirect.Fixed, err = sub.GetBoolean(fixedProperty); err != nil {
			return nil, err
		}

		if nonDirect.Expires, err = sub.GetDateTime(expiresProperty); err != nil {
			return nil, err
		}
	} else {
		interval, err := sub.GetString(intervalProperty)
		if err != nil {
			return nil, err
		}

		nonDirect.Interval = RecurringInterval(interval)

		if sub.HasProperty(installmentsProperty) {
			if nonDirect.Installments, err = sub.GetInt(installmentsProperty); err != nil {
				return nil, err
			}
		}

		if nonDirect.Fixed, err = sub.GetBoolean(fixedProperty); err != nil {
			return nil, err
		}
	}

	if err := nonDirect.validate(); err != nil {
		return nil, err
	}

	return nonDirect, nil
}
