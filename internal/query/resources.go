package query

import (
	"context"

	"github.com/galacash/gateway/internal/core/domain"
	"github.com/galacash/gateway/internal/core/ports"
)

// CurrentUserKey is the key of the signed-in user view.
var CurrentUserKey = Key{string(NSAuth), "current-user"}

func CurrentUser(svc ports.AuthService) Descriptor[*domain.User] {
	return Descriptor[*domain.User]{
		Key:       CurrentUserKey,
		StaleTime: StaleCurrentUser,
		Fetch:     svc.CurrentUser,
	}
}

func Profile(svc ports.UserService) Descriptor[*domain.User] {
	return Descriptor[*domain.User]{
		Key:       Key{string(NSUser), "profile"},
		StaleTime: StaleProfile,
		Fetch:     svc.Profile,
	}
}

func DashboardSummary(svc ports.DashboardService) Descriptor[*domain.DashboardSummary] {
	return Descriptor[*domain.DashboardSummary]{
		Key:       Key{string(NSDashboard), "summary"},
		StaleTime: StaleDashboard,
		Fetch:     svc.Summary,
	}
}

// ── Transactions ──────────────────────────────────────────────────────────────

func TransactionList(svc ports.TransactionService, f ports.TransactionFilter) Descriptor[*ports.Page[domain.Transaction]] {
	return Descriptor[*ports.Page[domain.Transaction]]{
		Key:       NewKey(NSTransactions, "list", f.Values()),
		StaleTime: StaleList,
		Fetch: func(ctx context.Context) (*ports.Page[domain.Transaction], error) {
			return svc.List(ctx, f)
		},
	}
}

func TransactionDetail(svc ports.TransactionService, id string) Descriptor[*domain.Transaction] {
	return Descriptor[*domain.Transaction]{
		Key:       DetailKey(NSTransactions, id),
		StaleTime: StaleDetail,
		Fetch: func(ctx context.Context) (*domain.Transaction, error) {
			return svc.Get(ctx, id)
		},
	}
}

// ── Cash bills ────────────────────────────────────────────────────────────────

func CashBillList(svc ports.CashBillService, f ports.CashBillFilter) Descriptor[*ports.Page[domain.CashBill]] {
	return Descriptor[*ports.Page[domain.CashBill]]{
		Key:       NewKey(NSCashBills, "list", f.Values()),
		StaleTime: StaleList,
		Fetch: func(ctx context.Context) (*ports.Page[domain.CashBill], error) {
			return svc.List(ctx, f)
		},
	}
}

func CashBillDetail(svc ports.CashBillService, id string) Descriptor[*domain.CashBill] {
	return Descriptor[*domain.CashBill]{
		Key:       DetailKey(NSCashBills, id),
		StaleTime: StaleDetail,
		Fetch: func(ctx context.Context) (*domain.CashBill, error) {
			return svc.Get(ctx, id)
		},
	}
}

// ── Fund applications ─────────────────────────────────────────────────────────

func FundApplicationList(svc ports.FundApplicationService, f ports.FundApplicationFilter) Descriptor[*ports.Page[domain.FundApplication]] {
	return Descriptor[*ports.Page[domain.FundApplication]]{
		Key:       NewKey(NSFundApplications, "list", f.Values()),
		StaleTime: StaleList,
		Fetch: func(ctx context.Context) (*ports.Page[domain.FundApplication], error) {
			return svc.List(ctx, f)
		},
	}
}

func FundApplicationDetail(svc ports.FundApplicationService, id string) Descriptor[*domain.FundApplication] {
	return Descriptor[*domain.FundApplication]{
		Key:       DetailKey(NSFundApplications, id),
		StaleTime: StaleDetail,
		Fetch: func(ctx context.Context) (*domain.FundApplication, error) {
			return svc.Get(ctx, id)
		},
	}
}

// ── Bendahara ─────────────────────────────────────────────────────────────────

func BendaharaDashboard(svc ports.BendaharaService) Descriptor[*domain.BendaharaDashboard] {
	return Descriptor[*domain.BendaharaDashboard]{
		Key:       Key{string(NSBendahara), "dashboard"},
		StaleTime: StaleDashboard,
		Fetch:     svc.Dashboard,
	}
}

func BendaharaFundApplications(svc ports.BendaharaService, f ports.FundApplicationFilter) Descriptor[*ports.Page[domain.FundApplication]] {
	return Descriptor[*ports.Page[domain.FundApplication]]{
		Key:       NewKey(NSBendahara, "fund-applications", f.Values()),
		StaleTime: StaleList,
		Fetch: func(ctx context.Context) (*ports.Page[domain.FundApplication], error) {
			return svc.FundApplications(ctx, f)
		},
	}
}

func BendaharaCashBills(svc ports.BendaharaService, f ports.CashBillFilter) Descriptor[*ports.Page[domain.CashBill]] {
	return Descriptor[*ports.Page[domain.CashBill]]{
		Key:       NewKey(NSBendahara, "cash-bills", f.Values()),
		StaleTime: StaleList,
		Fetch: func(ctx context.Context) (*ports.Page[domain.CashBill], error) {
			return svc.CashBills(ctx, f)
		},
	}
}

func Students(svc ports.BendaharaService, f ports.StudentFilter) Descriptor[*ports.Page[domain.Student]] {
	return Descriptor[*ports.Page[domain.Student]]{
		Key:       NewKey(NSBendahara, "students", f.Values()),
		StaleTime: StaleList,
		Fetch: func(ctx context.Context) (*ports.Page[domain.Student], error) {
			return svc.Students(ctx, f)
		},
	}
}

func RekapKas(svc ports.BendaharaService, f ports.RekapFilter) Descriptor[*domain.RekapKas] {
	return Descriptor[*domain.RekapKas]{
		Key:       NewKey(NSBendahara, "rekap-kas", f.Values()),
		StaleTime: StaleList,
		Fetch: func(ctx context.Context) (*domain.RekapKas, error) {
			return svc.RekapKas(ctx, f)
		},
	}
}
