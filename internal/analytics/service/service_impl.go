package service

import (
	"context"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	analytics "github.com/smallbiznis/vyapar/internal/analytics/domain"
	"github.com/smallbiznis/vyapar/internal/clock"
	"github.com/smallbiznis/vyapar/internal/companyctx"
	"github.com/smallbiznis/vyapar/internal/config"
	pkgdb "github.com/smallbiznis/vyapar/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
	Rules *config.RulesHolder
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
	rules *config.RulesHolder
}

func NewService(p Params) analytics.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("analytics.service"),
		clock: p.Clock,
		rules: p.Rules,
	}
}

func (s *Service) RevenueTrend(ctx context.Context, days int) (analytics.RevenueTrend, error) {
	companyID, err := companyIDFromContext(ctx)
	if err != nil {
		return analytics.RevenueTrend{}, err
	}

	rules := s.rules.Get().Dashboard
	if days == 0 {
		days = rules.RevenueDays
	}
	if !allowedPeriod(days, rules.RevenuePeriodDays) {
		return analytics.RevenueTrend{}, analytics.ErrInvalidPeriod
	}

	cutoff := s.clock.Now().UTC().AddDate(0, 0, -days)

	var rows []struct {
		Total     decimal.Decimal
		CreatedAt time.Time
	}
	err = s.db.WithContext(ctx).Raw(
		`SELECT total, created_at
		 FROM invoices
		 WHERE company_id = ? AND status <> 'cancelled' AND created_at >= ?
		 ORDER BY created_at ASC`,
		companyID,
		cutoff,
	).Scan(&rows).Error
	if err != nil {
		return analytics.RevenueTrend{}, err
	}

	// Bucketed per UTC day.
	series := make([]analytics.RevenuePoint, 0)
	index := make(map[string]int)
	total := decimal.Zero
	for _, row := range rows {
		day := truncateToDay(row.CreatedAt).Format("2006-01-02")
		i, ok := index[day]
		if !ok {
			i = len(series)
			index[day] = i
			series = append(series, analytics.RevenuePoint{Date: day, Revenue: decimal.Zero})
		}
		series[i].Revenue = series[i].Revenue.Add(row.Total)
		total = total.Add(row.Total)
	}
	sort.SliceStable(series, func(i, j int) bool { return series[i].Date < series[j].Date })

	return analytics.RevenueTrend{Days: days, Total: total, Series: series}, nil
}

func (s *Service) TopProducts(ctx context.Context, limit int) ([]analytics.TopProduct, error) {
	companyID, err := companyIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.rules.Get().Dashboard.TopProductsLimit
	}

	var rows []struct {
		ProductName string
		TotalQty    decimal.Decimal
		Revenue     decimal.Decimal
	}
	err = s.db.WithContext(ctx).Raw(
		`SELECT ii.product_name AS product_name,
			COALESCE(SUM(ii.quantity), 0) AS total_qty,
			COALESCE(SUM(ii.total_price), 0) AS revenue
		 FROM invoice_items ii
		 JOIN invoices i ON i.id = ii.invoice_id
		 WHERE i.company_id = ? AND i.status <> 'cancelled'
		 GROUP BY ii.product_name
		 ORDER BY total_qty DESC, product_name ASC
		 LIMIT ?`,
		companyID,
		limit,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]analytics.TopProduct, 0, len(rows))
	for _, row := range rows {
		items = append(items, analytics.TopProduct{
			Product: row.ProductName,
			QtySold: pkgdb.Quantity(row.TotalQty),
			Revenue: pkgdb.Money(row.Revenue),
		})
	}
	return items, nil
}

func (s *Service) LowStock(ctx context.Context) (analytics.LowStockReport, error) {
	companyID, err := companyIDFromContext(ctx)
	if err != nil {
		return analytics.LowStockReport{}, err
	}

	products, err := s.lowStockProducts(ctx, companyID, 0)
	if err != nil {
		return analytics.LowStockReport{}, err
	}

	var rows []struct {
		ID                snowflake.ID
		Name              string
		Unit              string
		StockQuantity     decimal.Decimal
		LowStockThreshold decimal.Decimal
	}
	err = s.db.WithContext(ctx).Raw(
		`SELECT id, name, unit, stock_quantity, low_stock_threshold
		 FROM raw_materials
		 WHERE company_id = ? AND is_active = ? AND stock_quantity <= low_stock_threshold
		 ORDER BY stock_quantity ASC, name ASC`,
		companyID,
		true,
	).Scan(&rows).Error
	if err != nil {
		return analytics.LowStockReport{}, err
	}

	materials := make([]analytics.LowStockItem, 0, len(rows))
	for _, row := range rows {
		threshold := row.LowStockThreshold
		materials = append(materials, analytics.LowStockItem{
			ID:        row.ID,
			Name:      row.Name,
			Stock:     row.StockQuantity,
			Unit:      row.Unit,
			Threshold: &threshold,
		})
	}

	return analytics.LowStockReport{Products: products, RawMaterials: materials}, nil
}

func (s *Service) lowStockProducts(ctx context.Context, companyID snowflake.ID, limit int) ([]analytics.LowStockItem, error) {
	threshold := s.rules.Get().Inventory.ProductLowStockThreshold

	query := s.db.WithContext(ctx).
		Table("products").
		Select("id, name, stock, unit").
		Where("company_id = ? AND is_active = ? AND stock <= ?", companyID, true, threshold).
		Order("stock ASC, name ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []struct {
		ID    snowflake.ID
		Name  string
		Stock decimal.Decimal
		Unit  string
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]analytics.LowStockItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, analytics.LowStockItem{
			ID:    row.ID,
			Name:  row.Name,
			Stock: row.Stock,
			Unit:  row.Unit,
		})
	}
	return items, nil
}

func (s *Service) ProductionSummary(ctx context.Context) (analytics.ProductionSummary, error) {
	companyID, err := companyIDFromContext(ctx)
	if err != nil {
		return analytics.ProductionSummary{}, err
	}

	start := truncateToMonth(s.clock.Now())

	var row struct {
		Units   decimal.Decimal
		Cost    decimal.Decimal
		Batches int64
	}
	err = s.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(quantity_produced), 0) AS units,
			COALESCE(SUM(total_cost), 0) AS cost,
			COUNT(id) AS batches
		 FROM production_batches
		 WHERE company_id = ? AND created_at >= ?`,
		companyID,
		start,
	).Scan(&row).Error
	if err != nil {
		return analytics.ProductionSummary{}, err
	}

	return analytics.ProductionSummary{
		TotalUnits:   pkgdb.Quantity(row.Units),
		TotalCost:    row.Cost.Round(2),
		TotalBatches: row.Batches,
		Period:       periodLabel(start),
	}, nil
}

func (s *Service) ProfitSummary(ctx context.Context) (analytics.ProfitSummary, error) {
	companyID, err := companyIDFromContext(ctx)
	if err != nil {
		return analytics.ProfitSummary{}, err
	}

	start := truncateToMonth(s.clock.Now())

	revenue, _, err := s.invoiceTotals(ctx, companyID, start)
	if err != nil {
		return analytics.ProfitSummary{}, err
	}
	purchaseCost, err := s.sumSince(ctx, "purchases", "total_amount", companyID, start)
	if err != nil {
		return analytics.ProfitSummary{}, err
	}
	productionCost, err := s.sumSince(ctx, "production_batches", "total_cost", companyID, start)
	if err != nil {
		return analytics.ProfitSummary{}, err
	}

	expenses := purchaseCost.Add(productionCost)
	profit := revenue.Sub(expenses)

	return analytics.ProfitSummary{
		Revenue:        revenue,
		PurchaseCost:   purchaseCost,
		ProductionCost: productionCost,
		TotalExpenses:  expenses,
		GrossProfit:    profit,
		Margin:         Margin(profit, revenue),
		Period:         periodLabel(start),
	}, nil
}

func (s *Service) InventoryValuation(ctx context.Context) (analytics.InventoryValuation, error) {
	companyID, err := companyIDFromContext(ctx)
	if err != nil {
		return analytics.InventoryValuation{}, err
	}

	raw, err := s.rawMaterialValuation(ctx, companyID)
	if err != nil {
		return analytics.InventoryValuation{}, err
	}
	finished, err := s.finishedGoodsValuation(ctx, companyID)
	if err != nil {
		return analytics.InventoryValuation{}, err
	}

	return analytics.InventoryValuation{
		RawMaterialsValue:  raw.TotalValue,
		FinishedGoodsValue: finished.TotalValue,
		TotalValue:         raw.TotalValue.Add(finished.TotalValue).Round(2),
		RawMaterials:       raw,
		FinishedGoods:      finished,
	}, nil
}

func (s *Service) rawMaterialValuation(ctx context.Context, companyID snowflake.ID) (analytics.ValuationGroup, error) {
	var rows []struct {
		ID            snowflake.ID
		Name          string
		Unit          string
		StockQuantity decimal.Decimal
		CostPrice     decimal.Decimal
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, name, unit, stock_quantity, cost_price
		 FROM raw_materials
		 WHERE company_id = ? AND is_active = ?
		 ORDER BY name ASC, id ASC`,
		companyID,
		true,
	).Scan(&rows).Error
	if err != nil {
		return analytics.ValuationGroup{}, err
	}

	group := analytics.ValuationGroup{Type: "raw_materials", TotalValue: decimal.Zero, Items: make([]analytics.ValuationItem, 0, len(rows))}
	for _, row := range rows {
		value := row.StockQuantity.Mul(row.CostPrice).Round(2)
		group.TotalValue = group.TotalValue.Add(value)
		group.Items = append(group.Items, analytics.ValuationItem{
			ID:       row.ID,
			Name:     row.Name,
			Unit:     row.Unit,
			Quantity: row.StockQuantity,
			UnitCost: row.CostPrice,
			Value:    value,
		})
	}
	group.ItemCount = len(group.Items)
	return group, nil
}

func (s *Service) finishedGoodsValuation(ctx context.Context, companyID snowflake.ID) (analytics.ValuationGroup, error) {
	var products []struct {
		ID    snowflake.ID
		Name  string
		Unit  string
		Stock decimal.Decimal
		Price decimal.Decimal
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, name, unit, stock, price
		 FROM products
		 WHERE company_id = ? AND is_active = ?
		 ORDER BY name ASC, id ASC`,
		companyID,
		true,
	).Scan(&products).Error
	if err != nil {
		return analytics.ValuationGroup{}, err
	}

	var batches []struct {
		FinishedProductID snowflake.ID
		CostPerUnit       decimal.Decimal
	}
	err = s.db.WithContext(ctx).Raw(
		`SELECT finished_product_id, cost_per_unit
		 FROM production_batches
		 WHERE company_id = ?
		 ORDER BY created_at DESC, id DESC`,
		companyID,
	).Scan(&batches).Error
	if err != nil {
		return analytics.ValuationGroup{}, err
	}

	latest := make(map[snowflake.ID]decimal.Decimal, len(batches))
	for _, batch := range batches {
		if _, seen := latest[batch.FinishedProductID]; !seen {
			latest[batch.FinishedProductID] = batch.CostPerUnit
		}
	}

	group := analytics.ValuationGroup{Type: "finished_goods", TotalValue: decimal.Zero, Items: make([]analytics.ValuationItem, 0, len(products))}
	for _, product := range products {
		unitCost, ok := latest[product.ID]
		if !ok {
			unitCost = decimal.Zero
		}
		price := product.Price
		value := product.Stock.Mul(unitCost).Round(2)
		group.TotalValue = group.TotalValue.Add(value)
		group.Items = append(group.Items, analytics.ValuationItem{
			ID:           product.ID,
			Name:         product.Name,
			Unit:         product.Unit,
			Quantity:     product.Stock,
			UnitCost:     unitCost,
			SellingPrice: &price,
			Value:        value,
		})
	}
	group.ItemCount = len(group.Items)
	return group, nil
}

func (s *Service) DashboardSummary(ctx context.Context) (analytics.DashboardSummary, error) {
	companyID, err := companyIDFromContext(ctx)
	if err != nil {
		return analytics.DashboardSummary{}, err
	}

	now := s.clock.Now()
	todayRevenue, todayCount, err := s.invoiceTotals(ctx, companyID, truncateToDay(now))
	if err != nil {
		return analytics.DashboardSummary{}, err
	}
	monthRevenue, monthCount, err := s.invoiceTotals(ctx, companyID, truncateToMonth(now))
	if err != nil {
		return analytics.DashboardSummary{}, err
	}
	lowStock, err := s.lowStockProducts(ctx, companyID, s.rules.Get().Dashboard.LowStockLimit)
	if err != nil {
		return analytics.DashboardSummary{}, err
	}

	return analytics.DashboardSummary{
		TodayRevenue:       todayRevenue,
		MonthlyRevenue:     monthRevenue,
		TotalInvoicesToday: todayCount,
		TotalInvoicesMonth: monthCount,
		LowStockItems:      lowStock,
	}, nil
}

func (s *Service) invoiceTotals(ctx context.Context, companyID snowflake.ID, since time.Time) (decimal.Decimal, int64, error) {
	var row struct {
		Revenue decimal.Decimal
		Count   int64
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(total), 0) AS revenue, COUNT(id) AS count
		 FROM invoices
		 WHERE company_id = ? AND status <> 'cancelled' AND created_at >= ?`,
		companyID,
		since,
	).Scan(&row).Error
	if err != nil {
		return decimal.Zero, 0, err
	}
	return row.Revenue.Round(2), row.Count, nil
}

// sumSince is only called with fixed table and column names.
func (s *Service) sumSince(ctx context.Context, table, column string, companyID snowflake.ID, since time.Time) (decimal.Decimal, error) {
	var row struct {
		Amount decimal.Decimal
	}
	err := s.db.WithContext(ctx).
		Table(table).
		Select("COALESCE(SUM("+column+"), 0) AS amount").
		Where("company_id = ? AND created_at >= ?", companyID, since).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Amount.Round(2), nil
}

// Margin returns profit as a percentage of revenue rounded to two places,
// or zero when there is no revenue.
func Margin(profit, revenue decimal.Decimal) decimal.Decimal {
	if !revenue.IsPositive() {
		return decimal.Zero
	}
	return profit.Div(revenue).Mul(decimal.NewFromInt(100)).Round(2)
}

func allowedPeriod(days int, allowed []int) bool {
	for _, candidate := range allowed {
		if candidate == days {
			return true
		}
	}
	return false
}

func periodLabel(start time.Time) string {
	return start.Format("Jan 2006")
}

func truncateToDay(value time.Time) time.Time {
	value = value.UTC()
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, time.UTC)
}

func truncateToMonth(value time.Time) time.Time {
	value = value.UTC()
	return time.Date(value.Year(), value.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func companyIDFromContext(ctx context.Context) (snowflake.ID, error) {
	companyID, ok := companyctx.CompanyIDFromContext(ctx)
	if !ok || companyID == 0 {
		return 0, analytics.ErrInvalidCompany
	}
	return companyID, nil
}
