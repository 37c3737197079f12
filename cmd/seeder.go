package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/frahmantamala/saas-admin/internal"
	"github.com/frahmantamala/saas-admin/internal/audit"
	auditPostgres "github.com/frahmantamala/saas-admin/internal/audit/postgres"
	"github.com/frahmantamala/saas-admin/internal/auth"
	authPostgres "github.com/frahmantamala/saas-admin/internal/auth/postgres"
	"github.com/frahmantamala/saas-admin/internal/core/common/dates"
	"github.com/frahmantamala/saas-admin/internal/core/events"
	"github.com/frahmantamala/saas-admin/internal/customer"
	customerPostgres "github.com/frahmantamala/saas-admin/internal/customer/postgres"
	"github.com/frahmantamala/saas-admin/internal/expense"
	expensePostgres "github.com/frahmantamala/saas-admin/internal/expense/postgres"
	"github.com/frahmantamala/saas-admin/internal/promo"
	promoPostgres "github.com/frahmantamala/saas-admin/internal/promo/postgres"
	"github.com/frahmantamala/saas-admin/internal/salesperson"
	salesPostgres "github.com/frahmantamala/saas-admin/internal/salesperson/postgres"
	"github.com/frahmantamala/saas-admin/pkg/logger"
)

var (
	clearData     bool
	adminEmail    string
	adminPassword string
)

// seeded tables, children first
var seedTables = []string{"audit_logs", "expenses", "users", "promo_codes", "sales_people", "dashboard_users"}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with dashboard accounts and sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		gdb, db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		if clearData {
			for _, table := range seedTables {
				if err := gdb.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		if err := seed(cmd.Context(), gdb, cfg.Security.BCryptCost); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	},
}

func seed(ctx context.Context, gdb *gorm.DB, bcryptCost int) error {
	lg := logger.LoggerWrapper()
	bus := events.NewEventBus(lg)
	audit.NewService(auditPostgres.NewAuditRepository(gdb), lg).Subscribe(bus)
	defer bus.Wait()

	users := authPostgres.NewRepository(gdb)
	// tokens are never issued while seeding
	authService := auth.NewService(users, nil, bcryptCost, lg)

	accounts := []auth.CreateUserDTO{
		{Email: adminEmail, Password: adminPassword, Name: "Dashboard Admin", Role: string(internal.RoleAdmin)},
		{Email: "sales@example.com", Password: adminPassword, Name: "Sales Desk", Role: string(internal.RoleSales)},
	}
	for _, dto := range accounts {
		_, err := authService.CreateUser(ctx, dto)
		switch {
		case errors.Is(err, internal.ErrAccountEmailTaken):
			fmt.Println("account already exists:", dto.Email)
		case err != nil:
			return fmt.Errorf("create account %s: %w", dto.Email, err)
		default:
			fmt.Println("Seeded account:", dto.Email)
		}
	}

	admin, err := users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(adminEmail)))
	if err != nil {
		return fmt.Errorf("lookup admin: %w", err)
	}
	actor := internal.AuthContext{Identity: admin.ID, Role: internal.RoleAdmin, Name: admin.Name}
	today := dates.Truncate(time.Now().UTC())

	salesService := salesperson.NewService(salesPostgres.NewSalesPersonRepository(gdb), bus, lg)
	var salesIDs []string
	for _, p := range []salesperson.CreateSalesPersonDTO{
		{Name: "Rina Wulandari", Email: "rina@example.com"},
		{Name: "Budi Santoso", Email: "budi@example.com"},
		{Name: "Citra Lestari", Email: "citra@example.com"},
	} {
		sp, err := salesService.Create(ctx, actor, p)
		if errors.Is(err, internal.ErrSalesEmailTaken) {
			fmt.Println("sales person already exists:", p.Email)
			continue
		}
		if err != nil {
			return fmt.Errorf("create sales person %s: %w", p.Email, err)
		}
		salesIDs = append(salesIDs, sp.ID)
	}
	if len(salesIDs) == 0 {
		fmt.Println("sample data already present; run with --clear to reseed")
		return nil
	}

	customerService := customer.NewService(customerPostgres.NewCustomerRepository(gdb), salesService, bus, lg)
	packages := []string{"free", "starter", "pro", "enterprise"}
	for i := 0; i < 8; i++ {
		dto := customer.CreateCustomerDTO{
			Username:         fmt.Sprintf("creator%02d", i+1),
			Email:            fmt.Sprintf("creator%02d@example.com", i+1),
			Package:          packages[i%len(packages)],
			FollowersJoined:  1000 * (i + 1),
			FollowersNow:     1500 * (i + 1),
			AutomationsCount: i * 2,
			IsAffiliate:      i%3 == 0,
			ReferralCount:    i % 4,
			JoinedDate:       &dates.Date{Time: today.AddDate(0, 0, -7*i)},
		}
		if i%4 != 3 {
			dto.OnboardingSalesID = &salesIDs[i%len(salesIDs)]
		}
		if _, err := customerService.Create(ctx, actor, dto); err != nil {
			return fmt.Errorf("create customer %s: %w", dto.Email, err)
		}
	}
	fmt.Println("Seeded end users")

	promoService := promo.NewService(promoPostgres.NewPromoRepository(gdb), bus, lg)
	maxUses := 50
	for _, p := range []promo.CreatePromoDTO{
		{Code: "WELCOME10", DiscountType: promo.DiscountPercentage, Value: decimal.NewFromInt(10), ExpiryDate: dates.New(today.AddDate(0, 3, 0)), MaxUses: &maxUses},
		{Code: "FLAT25", DiscountType: promo.DiscountFlat, Value: decimal.NewFromInt(25), ExpiryDate: dates.New(today.AddDate(0, 0, 2))},
	} {
		_, err := promoService.Create(ctx, actor, p)
		if errors.Is(err, internal.ErrPromoCodeTaken) {
			fmt.Println("promo code already exists:", p.Code)
			continue
		}
		if err != nil {
			return fmt.Errorf("create promo %s: %w", p.Code, err)
		}
	}
	fmt.Println("Seeded promo codes")

	expenseService := expense.NewService(expensePostgres.NewExpenseRepository(gdb), bus, lg)
	soon := dates.New(today.AddDate(0, 0, 3))
	later := dates.New(today.AddDate(0, 0, 8))
	for _, e := range []expense.SubmitExpenseDTO{
		{Type: expense.TypeTools, Merchant: "Figma", ExpenseDate: dates.New(today), Amount: decimal.RequireFromString("45.00"), Description: "design seats", ExpiryDate: &soon},
		{Type: expense.TypeTravel, Merchant: "Garuda", ExpenseDate: dates.New(today.AddDate(0, 0, -10)), Amount: decimal.RequireFromString("320.50"), Description: "annual lounge pass", ExpiryDate: &later},
		{Type: expense.TypeMarketing, Merchant: "Meta Ads", ExpenseDate: dates.New(today.AddDate(0, 0, -2)), Amount: decimal.RequireFromString("150.00")},
	} {
		if _, err := expenseService.Submit(ctx, actor, e); err != nil {
			return fmt.Errorf("submit expense %s: %w", e.Merchant, err)
		}
	}
	fmt.Println("Seeded expenses")
	return nil
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")
	seedCmd.Flags().StringVar(&adminEmail, "admin-email", "admin@example.com", "email of the seeded admin account")
	seedCmd.Flags().StringVar(&adminPassword, "admin-password", "password123", "password of the seeded dashboard accounts")
}
