package seeding

import (
	"time"

	"github.com/shopspring/decimal"

	"wanzo-portfolio/internal/domain/leasing"
	"wanzo-portfolio/internal/domain/portfolio"
)

func dec(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}

func date(v string) time.Time {
	t, _ := time.Parse("2006-01-02", v)
	return t
}

// traditionalFixtures are the static traditional-credit portfolios.
func traditionalFixtures() []portfolio.Portfolio {
	return []portfolio.Portfolio{
		{
			ID:             "trad-1",
			Type:           portfolio.TypeTraditional,
			Name:           "Portefeuille PME Kinshasa",
			Status:         portfolio.StatusActive,
			TargetAmount:   dec("500000000"),
			TargetReturn:   dec("12.5"),
			TargetSectors:  []string{"commerce", "agriculture", "services"},
			RiskProfile:    portfolio.RiskModerate,
			CreatedAt:      date("2024-01-15"),
			UpdatedAt:      date("2024-06-01"),
			Manager:        "Kabila Mwamba",
			ManagementFees: dec("2.0"),
			Traditional: &portfolio.TraditionalDetails{
				Description:   "Credit aux PME de la region de Kinshasa",
				ManagerID:     "mgr-001",
				InstitutionID: "inst-001",
				Products: []portfolio.FinancialProduct{
					{
						ID: "prod-1", Name: "Credit Fonds de Roulement", Category: "court_terme",
						MinAmount: dec("1000000"), MaxAmount: dec("50000000"),
						InterestRate: dec("14"), DurationMin: 3, DurationMax: 18, IsPublic: true,
					},
					{
						ID: "prod-2", Name: "Credit Equipement", Category: "moyen_terme",
						MinAmount: dec("5000000"), MaxAmount: dec("200000000"),
						InterestRate: dec("11.5"), DurationMin: 12, DurationMax: 60, IsPublic: true,
					},
				},
				Metrics: &portfolio.CreditMetrics{
					NbCredits:        42,
					TotalOutstanding: dec("320000000"),
					TauxRecouvrement: dec("94.2"),
					AvgCreditAmount:  dec("7600000"),
					BalanceAging: map[string]decimal.Decimal{
						"current": dec("290000000"),
						"30d":     dec("18000000"),
						"60d":     dec("8000000"),
						"90d+":    dec("4000000"),
					},
				},
			},
		},
	}
}

// leasingFixtures carry an equipment catalog plus one in-flight request so the
// leasing workflow has material to operate on after a fresh seed.
func leasingFixtures() []portfolio.Portfolio {
	return []portfolio.Portfolio{
		{
			ID:             "leas-1",
			Type:           portfolio.TypeLeasing,
			Name:           "Portefeuille Leasing Equipements",
			Status:         portfolio.StatusActive,
			TargetAmount:   dec("250000000"),
			TargetReturn:   dec("15"),
			TargetSectors:  []string{"construction", "transport"},
			RiskProfile:    portfolio.RiskAggressive,
			CreatedAt:      date("2024-02-01"),
			UpdatedAt:      date("2024-06-01"),
			Manager:        "Ilunga Tshisekedi",
			ManagementFees: dec("2.5"),
			Leasing: &portfolio.LeasingDetails{
				EquipmentCatalog: []leasing.Equipment{
					{ID: "eq-1", Name: "Excavatrice CAT 320", Category: "construction", Manufacturer: "Caterpillar", Price: dec("180000000"), Condition: "new", Availability: true},
					{ID: "eq-2", Name: "Camion Benne Mercedes", Category: "transport", Manufacturer: "Mercedes-Benz", Price: dec("95000000"), Condition: "used", Availability: true},
				},
				LeasingRequests: []leasing.Request{
					{ID: "WL-00000001", EquipmentID: "eq-2", ClientID: "client-7", RequestedDuration: 36, MonthlyBudget: dec("3200000"), Status: leasing.RequestPending, StatusDate: date("2024-05-20")},
				},
				LeasingTerms: portfolio.LeasingTerms{
					MinDuration: 12, MaxDuration: 60,
					InterestRateMin: dec("4"), InterestRateMax: dec("9"),
					MaintenanceIncluded: true, InsuranceRequired: true,
				},
				MaintenanceOptions: []string{"standard", "premium"},
				InsuranceOptions:   []string{"base", "tous_risques"},
			},
		},
	}
}

func investmentFixtures() []portfolio.Portfolio {
	return []portfolio.Portfolio{
		{
			ID:             "inv-1",
			Type:           portfolio.TypeInvestment,
			Name:           "Fonds Croissance RDC",
			Status:         portfolio.StatusActive,
			TargetAmount:   dec("1000000000"),
			TargetReturn:   dec("18"),
			TargetSectors:  []string{"energie", "telecom", "fintech"},
			RiskProfile:    portfolio.RiskAggressive,
			CreatedAt:      date("2024-03-10"),
			UpdatedAt:      date("2024-06-01"),
			Manager:        "Nzinga Mobutu",
			ManagementFees: dec("3.0"),
			Investment: &portfolio.InvestmentDetails{
				Assets: []portfolio.InvestmentAsset{
					{ID: "asset-1", Name: "Participation SolaireCo", AssetClass: "private_equity", CurrentValue: dec("420000000"), AcquiredAt: date("2024-03-15")},
				},
				Subscriptions: []portfolio.Subscription{
					{ID: "sub-1", InvestorID: "investor-3", Amount: dec("150000000"), Date: date("2024-04-01"), Status: "settled"},
				},
				Valuations: []portfolio.Valuation{
					{ID: "val-1", Date: date("2024-06-01"), TotalValue: dec("610000000"), UnitValue: dec("1220"), Methodology: "mark_to_model"},
				},
				Requests: []portfolio.InvestmentRequest{
					{ID: "ireq-1", InvestorID: "investor-5", Amount: dec("80000000"), Status: "pending", Date: date("2024-05-28")},
				},
			},
		},
	}
}

// fixturePortfolios concatenates the three fixture datasets in seed order.
func fixturePortfolios() []portfolio.Portfolio {
	var out []portfolio.Portfolio
	out = append(out, traditionalFixtures()...)
	out = append(out, leasingFixtures()...)
	out = append(out, investmentFixtures()...)
	return out
}
