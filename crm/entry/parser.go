// Package entry parses free-form record entry messages. Authenticated users
// add clients and orders by sending one comma-separated line; the number of
// fields and the shape of the first field select the record type.
package entry

import (
	"strconv"
	"strings"

	"crmbot/crm/crmerr"
	"crmbot/crm/validate"
)

// Record is one parsed entry line: exactly one of Client or Order is set.
type Record struct {
	Client *ClientRecord
	Order  *OrderRecord
}

// ClientRecord is a new client parsed from two or three fields.
type ClientRecord struct {
	Name    string
	Phone   string
	Address string
}

// OrderRecord is a new order parsed from three fields whose first field is a
// number. ClientIndex is 1-based against the current client listing.
type OrderRecord struct {
	ClientIndex int
	Product     string
	Amount      int64
}

const usage = "send either \"Name, phone\" or \"Name, phone, address\" to add a client, " +
	"or \"client number, product, amount\" to add an order"

// Parse interprets one entry line.
//
// Two fields make a client without an address. Three fields whose first field
// is an integer make an order; three fields otherwise make a client with an
// address. Any other arity is rejected.
func Parse(text string) (Record, error) {
	parts := strings.Split(text, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	switch len(parts) {
	case 2:
		c, err := parseClient(parts[0], parts[1], "")
		if err != nil {
			return Record{}, err
		}
		return Record{Client: c}, nil
	case 3:
		if idx, err := strconv.Atoi(parts[0]); err == nil {
			o, err := parseOrder(idx, parts[1], parts[2])
			if err != nil {
				return Record{}, err
			}
			return Record{Order: o}, nil
		}
		c, err := parseClient(parts[0], parts[1], parts[2])
		if err != nil {
			return Record{}, err
		}
		return Record{Client: c}, nil
	default:
		return Record{}, &crmerr.ValidationError{Reason: usage}
	}
}

func parseClient(name, phone, address string) (*ClientRecord, error) {
	if !validate.ValidName(name) {
		return nil, &crmerr.ValidationError{Reason: "client name is too short"}
	}
	normalized, ok := validate.NormalizePhone(phone)
	if !ok {
		return nil, &crmerr.ValidationError{Reason: "phone must be digits, optionally prefixed with +"}
	}
	return &ClientRecord{Name: name, Phone: normalized, Address: address}, nil
}

func parseOrder(clientIndex int, product, amount string) (*OrderRecord, error) {
	if clientIndex < 1 {
		return nil, &crmerr.ValidationError{Reason: "client number must be positive"}
	}
	if product == "" {
		return nil, &crmerr.ValidationError{Reason: "product is empty"}
	}
	digits := validate.Digits(amount)
	if digits == "" {
		return nil, &crmerr.ValidationError{Reason: "amount must contain digits"}
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return nil, &crmerr.ValidationError{Reason: "amount is out of range"}
	}
	return &OrderRecord{ClientIndex: clientIndex, Product: product, Amount: n}, nil
}
