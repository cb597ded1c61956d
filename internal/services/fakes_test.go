package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"afftrack/internal/models"
	"afftrack/internal/utils"
	"afftrack/pkg/payout"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository doubles. They mirror the mongodb implementations'
// contracts closely enough for service-level tests: unique indexes become
// map checks, CAS updates take the lock for the compare and the swap.

type fakeAffiliateRepo struct {
	mu      sync.Mutex
	byID    map[primitive.ObjectID]*models.AffiliateAccount
	byCode  map[string]primitive.ObjectID
	failing bool
}

func newFakeAffiliateRepo() *fakeAffiliateRepo {
	return &fakeAffiliateRepo{
		byID:   make(map[primitive.ObjectID]*models.AffiliateAccount),
		byCode: make(map[string]primitive.ObjectID),
	}
}

func (r *fakeAffiliateRepo) Create(ctx context.Context, affiliate *models.AffiliateAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failing {
		return errors.New("affiliate storage unavailable")
	}

	if _, taken := r.byCode[affiliate.ReferralCode]; taken {
		return errors.New("duplicate key error: referral_code")
	}

	if affiliate.ID.IsZero() {
		affiliate.ID = primitive.NewObjectID()
	}
	affiliate.CreatedAt = time.Now()
	affiliate.UpdatedAt = affiliate.CreatedAt

	copied := *affiliate
	r.byID[affiliate.ID] = &copied
	r.byCode[affiliate.ReferralCode] = affiliate.ID
	return nil
}

func (r *fakeAffiliateRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.AffiliateAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	affiliate, ok := r.byID[id]
	if !ok {
		return nil, ErrAffiliateNotFound
	}
	copied := *affiliate
	return &copied, nil
}

func (r *fakeAffiliateRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return nil
}

func (r *fakeAffiliateRepo) GetByReferralCode(ctx context.Context, code string) (*models.AffiliateAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byCode[code]
	if !ok {
		return nil, ErrCodeNotFound
	}
	copied := *r.byID[id]
	return &copied, nil
}

func (r *fakeAffiliateRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.AffiliateStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	affiliate, ok := r.byID[id]
	if !ok {
		return ErrAffiliateNotFound
	}
	affiliate.Status = status
	affiliate.UpdatedAt = time.Now()
	return nil
}

func (r *fakeAffiliateRepo) UpdateCommissionRate(ctx context.Context, id primitive.ObjectID, rateBps int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	affiliate, ok := r.byID[id]
	if !ok {
		return ErrAffiliateNotFound
	}
	affiliate.CommissionRateBps = rateBps
	affiliate.UpdatedAt = time.Now()
	return nil
}

func (r *fakeAffiliateRepo) List(ctx context.Context, status models.AffiliateStatus, params *utils.PaginationParams) ([]*models.AffiliateAccount, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.AffiliateAccount
	for _, affiliate := range r.byID {
		if status != "" && affiliate.Status != status {
			continue
		}
		copied := *affiliate
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

type fakeApplicationRepo struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.AffiliateApplication
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{byID: make(map[primitive.ObjectID]*models.AffiliateApplication)}
}

func (r *fakeApplicationRepo) Create(ctx context.Context, application *models.AffiliateApplication) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if application.ID.IsZero() {
		application.ID = primitive.NewObjectID()
	}
	application.Status = models.ApplicationStatusPending
	application.CreatedAt = time.Now()

	copied := *application
	r.byID[application.ID] = &copied
	return nil
}

func (r *fakeApplicationRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.AffiliateApplication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	application, ok := r.byID[id]
	if !ok {
		return nil, ErrApplicationNotFound
	}
	copied := *application
	return &copied, nil
}

func (r *fakeApplicationRepo) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.ApplicationStatus, updates map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	application, ok := r.byID[id]
	if !ok {
		return false, ErrApplicationNotFound
	}
	if application.Status != from {
		return false, nil
	}

	application.Status = to
	if reason, ok := updates["rejection_reason"].(string); ok {
		application.RejectionReason = reason
	}
	if reviewer, ok := updates["reviewer_id"].(primitive.ObjectID); ok {
		application.ReviewerID = &reviewer
	}
	if reviewedAt, ok := updates["reviewed_at"].(time.Time); ok {
		application.ReviewedAt = &reviewedAt
	}
	return true, nil
}

func (r *fakeApplicationRepo) List(ctx context.Context, status models.ApplicationStatus, params *utils.PaginationParams) ([]*models.AffiliateApplication, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.AffiliateApplication
	for _, application := range r.byID {
		if status != "" && application.Status != status {
			continue
		}
		copied := *application
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

type fakeClickRepo struct {
	mu     sync.Mutex
	clicks []*models.ClickEvent
}

func newFakeClickRepo() *fakeClickRepo {
	return &fakeClickRepo{}
}

func (r *fakeClickRepo) Create(ctx context.Context, click *models.ClickEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if click.ID.IsZero() {
		click.ID = primitive.NewObjectID()
	}
	if click.CreatedAt.IsZero() {
		click.CreatedAt = time.Now().UTC()
	}
	copied := *click
	r.clicks = append(r.clicks, &copied)
	return nil
}

func (r *fakeClickRepo) CountByAffiliate(ctx context.Context, affiliateID primitive.ObjectID, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, click := range r.clicks {
		if click.AffiliateID == affiliateID && !click.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakeClickRepo) DailyCounts(ctx context.Context, affiliateID primitive.ObjectID, since time.Time) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	counts := make(map[string]int64)
	for _, click := range r.clicks {
		if click.AffiliateID == affiliateID && !click.CreatedAt.Before(since) {
			counts[click.CreatedAt.UTC().Format("2006-01-02")]++
		}
	}
	return counts, nil
}

func (r *fakeClickRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clicks)
}

type fakeConversionRepo struct {
	mu        sync.Mutex
	byID      map[primitive.ObjectID]*models.ConversionRecord
	byOrderID map[string]primitive.ObjectID
}

func newFakeConversionRepo() *fakeConversionRepo {
	return &fakeConversionRepo{
		byID:      make(map[primitive.ObjectID]*models.ConversionRecord),
		byOrderID: make(map[string]primitive.ObjectID),
	}
}

func (r *fakeConversionRepo) Create(ctx context.Context, conversion *models.ConversionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byOrderID[conversion.OrderID]; taken {
		return ErrDuplicateConversion
	}

	if conversion.ID.IsZero() {
		conversion.ID = primitive.NewObjectID()
	}
	if conversion.CreatedAt.IsZero() {
		conversion.CreatedAt = time.Now().UTC()
	}

	copied := *conversion
	r.byID[conversion.ID] = &copied
	r.byOrderID[conversion.OrderID] = conversion.ID
	return nil
}

func (r *fakeConversionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.ConversionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conversion, ok := r.byID[id]
	if !ok {
		return nil, errors.New("conversion not found")
	}
	copied := *conversion
	return &copied, nil
}

func (r *fakeConversionRepo) GetByOrderID(ctx context.Context, orderID string) (*models.ConversionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byOrderID[orderID]
	if !ok {
		return nil, errors.New("conversion not found")
	}
	copied := *r.byID[id]
	return &copied, nil
}

func (r *fakeConversionRepo) ClaimUnsettled(ctx context.Context, affiliateID, settlementID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var claimed int64
	for _, conversion := range r.byID {
		if conversion.AffiliateID == affiliateID && conversion.SettlementID == nil {
			sid := settlementID
			conversion.SettlementID = &sid
			claimed++
		}
	}
	return claimed, nil
}

func (r *fakeConversionRepo) GetBySettlementID(ctx context.Context, settlementID primitive.ObjectID) ([]*models.ConversionRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.ConversionRecord
	for _, conversion := range r.byID {
		if conversion.SettlementID != nil && *conversion.SettlementID == settlementID {
			copied := *conversion
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.Hex() < out[j].ID.Hex()
	})
	return out, nil
}

func (r *fakeConversionRepo) ListByAffiliate(ctx context.Context, affiliateID primitive.ObjectID, params *utils.PaginationParams) ([]*models.ConversionRecord, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.ConversionRecord
	for _, conversion := range r.byID {
		if conversion.AffiliateID == affiliateID {
			copied := *conversion
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeConversionRepo) TotalsByAffiliate(ctx context.Context, affiliateID primitive.ObjectID, since time.Time) (*models.ConversionTotals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	totals := &models.ConversionTotals{
		Revenue:    models.NewMoney(decimal.Zero),
		Commission: models.NewMoney(decimal.Zero),
	}
	for _, conversion := range r.byID {
		if conversion.AffiliateID == affiliateID && !conversion.CreatedAt.Before(since) {
			totals.Count++
			totals.Revenue = models.NewMoney(totals.Revenue.Add(conversion.OrderTotal.Decimal))
			totals.Commission = models.NewMoney(totals.Commission.Add(conversion.CommissionAmount.Decimal))
		}
	}
	return totals, nil
}

func (r *fakeConversionRepo) DailyTotals(ctx context.Context, affiliateID primitive.ObjectID, since time.Time) (map[string]*models.ConversionTotals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	daily := make(map[string]*models.ConversionTotals)
	for _, conversion := range r.byID {
		if conversion.AffiliateID != affiliateID || conversion.CreatedAt.Before(since) {
			continue
		}
		key := conversion.CreatedAt.UTC().Format("2006-01-02")
		totals, ok := daily[key]
		if !ok {
			totals = &models.ConversionTotals{
				Revenue:    models.NewMoney(decimal.Zero),
				Commission: models.NewMoney(decimal.Zero),
			}
			daily[key] = totals
		}
		totals.Count++
		totals.Revenue = models.NewMoney(totals.Revenue.Add(conversion.OrderTotal.Decimal))
		totals.Commission = models.NewMoney(totals.Commission.Add(conversion.CommissionAmount.Decimal))
	}
	return daily, nil
}

type fakeSettlementRepo struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.Settlement
}

func newFakeSettlementRepo() *fakeSettlementRepo {
	return &fakeSettlementRepo{byID: make(map[primitive.ObjectID]*models.Settlement)}
}

func (r *fakeSettlementRepo) Create(ctx context.Context, settlement *models.Settlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if settlement.ID.IsZero() {
		settlement.ID = primitive.NewObjectID()
	}
	settlement.CreatedAt = time.Now()
	settlement.UpdatedAt = settlement.CreatedAt

	copied := *settlement
	r.byID[settlement.ID] = &copied
	return nil
}

func (r *fakeSettlementRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Settlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	settlement, ok := r.byID[id]
	if !ok {
		return nil, ErrSettlementNotFound
	}
	copied := *settlement
	return &copied, nil
}

func (r *fakeSettlementRepo) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.SettlementStatus, updates map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	settlement, ok := r.byID[id]
	if !ok {
		return false, ErrSettlementNotFound
	}
	if settlement.Status != from {
		return false, nil
	}

	settlement.Status = to
	settlement.UpdatedAt = time.Now()
	if ref, ok := updates["payout_ref"].(string); ok {
		settlement.PayoutRef = ref
	}
	if reason, ok := updates["failure_reason"].(string); ok {
		settlement.FailureReason = reason
	}
	if processedAt, ok := updates["processed_at"].(time.Time); ok {
		settlement.ProcessedAt = &processedAt
	}
	return true, nil
}

func (r *fakeSettlementRepo) ListByAffiliate(ctx context.Context, affiliateID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Settlement, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.Settlement
	for _, settlement := range r.byID {
		if settlement.AffiliateID == affiliateID {
			copied := *settlement
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeSettlementRepo) ListByStatus(ctx context.Context, status models.SettlementStatus, params *utils.PaginationParams) ([]*models.Settlement, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.Settlement
	for _, settlement := range r.byID {
		if settlement.Status == status {
			copied := *settlement
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

// fakePayoutProvider succeeds unless the destination is listed in failFor.
type fakePayoutProvider struct {
	mu      sync.Mutex
	calls   []*payout.Request
	failFor map[string]error
}

func newFakePayoutProvider() *fakePayoutProvider {
	return &fakePayoutProvider{failFor: make(map[string]error)}
}

func (p *fakePayoutProvider) Payout(ctx context.Context, req *payout.Request) (*payout.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, req)
	if err, ok := p.failFor[req.Destination]; ok {
		return nil, err
	}
	return &payout.Response{PayoutRef: "tr_" + req.SettlementID}, nil
}

func (p *fakePayoutProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}
