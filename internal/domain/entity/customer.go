package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer representa un cliente de la empresa con su estado financiero.
//
// OutstandingBalance es lo que el cliente debe a la empresa; CreditBalance es el
// saldo a favor que la empresa debe al cliente. Ambos son siempre >= 0: el motor
// de liquidación los recorta a cero después de cada mutación. Ningún otro código
// debe modificarlos.
type Customer struct {
	ID                 string
	CompanyID          string
	Name               string
	RIF                string // RIF o cédula (Venezuela)
	Address            string
	Email              string
	Phone              string
	OutstandingBalance decimal.Decimal
	CreditBalance      decimal.Decimal
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
