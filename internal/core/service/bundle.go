package service

import (
	"github.com/rs/zerolog"

	"github.com/galacash/gateway/internal/core/ports"
)

// Bundle groups the resource services bound to one API client.
type Bundle struct {
	Auth             ports.AuthService
	User             ports.UserService
	Dashboard        ports.DashboardService
	Transactions     ports.TransactionService
	CashBills        ports.CashBillService
	FundApplications ports.FundApplicationService
	Bendahara        ports.BendaharaService
}

func NewBundle(api ports.APIClient, log zerolog.Logger) *Bundle {
	return &Bundle{
		Auth:             NewAuthService(api, log),
		User:             NewUserService(api),
		Dashboard:        NewDashboardService(api),
		Transactions:     NewTransactionService(api),
		CashBills:        NewCashBillService(api),
		FundApplications: NewFundApplicationService(api),
		Bendahara:        NewBendaharaService(api),
	}
}
