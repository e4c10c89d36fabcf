package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/provider"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrInvalidCoupon = errors.New("coupon needs exactly one of percent_off or amount_off with currency")
	// ErrInvalidDuration covers unknown durations and a repeating duration
	// without a month count.
	ErrInvalidDuration = errors.New("duration must be once, forever or repeating with duration_in_months")
)

type CouponInput struct {
	Name             string
	PercentOff       float64
	AmountOff        decimal.Decimal
	Currency         string
	Duration         string
	DurationInMonths int64
	PromotionCode    string
}

func (in CouponInput) validate() error {
	hasPercent := in.PercentOff > 0
	hasAmount := in.AmountOff.IsPositive()
	if hasPercent == hasAmount || in.PercentOff > 100 {
		return ErrInvalidCoupon
	}
	if hasAmount && strings.TrimSpace(in.Currency) == "" {
		return ErrInvalidCoupon
	}
	switch in.Duration {
	case "once", "forever":
	case "repeating":
		if in.DurationInMonths <= 0 {
			return ErrInvalidDuration
		}
	default:
		return ErrInvalidDuration
	}
	return nil
}

// CouponService is the back-office view of provider coupons.
type CouponService struct {
	provider provider.CouponProvider
	logger   *zap.Logger
}

func NewCouponService(coupons provider.CouponProvider, logger *zap.Logger) *CouponService {
	return &CouponService{
		provider: coupons,
		logger:   logger,
	}
}

func (s *CouponService) List(ctx context.Context) ([]provider.Coupon, error) {
	return s.provider.ListCoupons(ctx)
}

// Create makes the coupon and, when requested, a promotion code for it.
func (s *CouponService) Create(ctx context.Context, in CouponInput) (*provider.Coupon, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	coupon, err := s.provider.CreateCoupon(ctx, provider.CouponRequest{
		Name:             in.Name,
		PercentOff:       in.PercentOff,
		AmountOff:        in.AmountOff,
		Currency:         strings.ToLower(in.Currency),
		Duration:         in.Duration,
		DurationInMonths: in.DurationInMonths,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}
	s.logger.Info("Coupon created", zap.String("coupon_id", coupon.ID))

	if code := strings.TrimSpace(in.PromotionCode); code != "" {
		promo, err := s.provider.CreatePromotionCode(ctx, coupon.ID, code)
		if err != nil {
			return coupon, fmt.Errorf("coupon %s created but promotion code failed: %w", coupon.ID, err)
		}
		coupon.PromotionCodes = append(coupon.PromotionCodes, *promo)
	}
	return coupon, nil
}
