package agreements

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/krishimitra/marketplace-backend/internal/profiles"
	"github.com/krishimitra/marketplace-backend/pkg/db/models"
	"github.com/krishimitra/marketplace-backend/pkg/enums"
	pkgerrors "github.com/krishimitra/marketplace-backend/pkg/errors"
	"github.com/krishimitra/marketplace-backend/pkg/logger"
)

// placeholder fills optional agreement fields that could not be resolved.
const placeholder = "—"

type dealReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Deal, error)
}

type profileReader interface {
	FindFarmerProfile(ctx context.Context, userID uuid.UUID) (*models.FarmerProfile, error)
	FindFarmerProfileByPhone(ctx context.Context, phone string) (*models.FarmerProfile, error)
	FindDealerProfile(ctx context.Context, userID uuid.UUID) (*models.DealerProfile, error)
}

type renderPublisher interface {
	PublishSync(ctx context.Context, topic string, data []byte, attrs map[string]string) (string, error)
}

// Service assembles agreement snapshots for accepted deals and hands them to
// the external PDF renderer.
type Service interface {
	Snapshot(ctx context.Context, dealID uuid.UUID) (*AgreementSnapshot, error)
	RequestRender(ctx context.Context, dealID uuid.UUID) (*RenderReceipt, error)
}

type service struct {
	deals     dealReader
	profiles  profileReader
	publisher renderPublisher
	topic     string
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds the agreement service.
func NewService(deals dealReader, profileRepo profileReader, publisher renderPublisher, topic string, logg *logger.Logger) (Service, error) {
	if deals == nil {
		return nil, fmt.Errorf("deals repository required")
	}
	if profileRepo == nil {
		return nil, fmt.Errorf("profiles repository required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("render publisher required")
	}
	if strings.TrimSpace(topic) == "" {
		return nil, fmt.Errorf("agreements topic required")
	}
	return &service{
		deals:     deals,
		profiles:  profileRepo,
		publisher: publisher,
		topic:     topic,
		logg:      logg,
		now:       time.Now,
	}, nil
}

func (s *service) Snapshot(ctx context.Context, dealID uuid.UUID) (*AgreementSnapshot, error) {
	if dealID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "deal id required")
	}
	deal, err := s.deals.FindByID(ctx, dealID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "deal not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load deal")
	}
	if deal.Status != enums.DealStatusAccepted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "agreement requires an accepted deal").
			WithDetails(map[string]any{"status": deal.Status})
	}

	snapshot := &AgreementSnapshot{
		DealID:         deal.ID,
		FarmerName:     orPlaceholder(deal.FarmerName),
		FarmerPhone:    placeholder,
		FarmerAadhar:   placeholder,
		FarmerState:    placeholder,
		DealerName:     placeholder,
		DealerBusiness: placeholder,
		DealerPhone:    placeholder,
		DealerEmail:    placeholder,
		DealerState:    placeholder,
		Crop:           orPlaceholder(deal.Crop),
		Quantity:       orPlaceholder(deal.Quantity),
		Price:          orPlaceholder(deal.AskPrice),
		Location:       orPlaceholder(deal.Location),
		HarvestDate:    orPlaceholder(deal.HarvestDate),
		TransportDate:  orPlaceholder(deal.TransportDate),
		ListedOn:       orPlaceholder(deal.ListedOn),
		AcceptedOn:     placeholder,
		GeneratedAt:    s.now().UTC(),
	}
	if deal.AcceptedAtStr != nil {
		snapshot.AcceptedOn = orPlaceholder(*deal.AcceptedAtStr)
	}
	if deal.DealerName != nil {
		snapshot.DealerName = orPlaceholder(*deal.DealerName)
	}
	if total := estimateTotal(deal.AskPrice, deal.Quantity); total != "" {
		snapshot.EstimatedTotal = total
	}

	s.applyFarmerProfile(ctx, deal, snapshot)
	s.applyDealerProfile(ctx, deal, snapshot)
	return snapshot, nil
}

// Profile lookups are best-effort; a missing row leaves the placeholders in
// place rather than failing the snapshot.
func (s *service) applyFarmerProfile(ctx context.Context, deal *models.Deal, snapshot *AgreementSnapshot) {
	var profile *models.FarmerProfile
	if deal.FarmerID != nil && *deal.FarmerID != uuid.Nil {
		if found, err := s.profiles.FindFarmerProfile(ctx, *deal.FarmerID); err == nil {
			profile = found
		}
	}
	if profile == nil {
		if phone := profiles.PhoneFromSyntheticEmail(deal.FarmerName); phone != "" {
			if found, err := s.profiles.FindFarmerProfileByPhone(ctx, phone); err == nil {
				profile = found
			}
		}
	}
	if profile == nil {
		return
	}
	if profile.Name != "" {
		snapshot.FarmerName = profile.Name
	}
	if profile.Phone != "" {
		snapshot.FarmerPhone = profile.Phone
	}
	if masked := maskAadhar(profile.Aadhar); masked != "" {
		snapshot.FarmerAadhar = masked
	}
	if profile.State != "" {
		snapshot.FarmerState = profile.State
	}
}

func (s *service) applyDealerProfile(ctx context.Context, deal *models.Deal, snapshot *AgreementSnapshot) {
	if deal.AcceptedBy == nil || *deal.AcceptedBy == uuid.Nil {
		return
	}
	profile, err := s.profiles.FindDealerProfile(ctx, *deal.AcceptedBy)
	if err != nil {
		return
	}
	if profile.ContactName != "" {
		snapshot.DealerName = profile.ContactName
	}
	if profile.BusinessName != "" {
		snapshot.DealerBusiness = profile.BusinessName
	}
	if profile.Phone != "" {
		snapshot.DealerPhone = profile.Phone
	}
	if profile.Email != "" {
		snapshot.DealerEmail = profile.Email
	}
	if profile.State != "" {
		snapshot.DealerState = profile.State
	}
}

func (s *service) RequestRender(ctx context.Context, dealID uuid.UUID) (*RenderReceipt, error) {
	snapshot, err := s.Snapshot(ctx, dealID)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode agreement snapshot")
	}
	messageID, err := s.publisher.PublishSync(ctx, s.topic, payload, map[string]string{
		"dealId": dealID.String(),
		"type":   string(enums.EventAgreementRequested),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "publish agreement render request")
	}
	if s.logg != nil {
		fields := map[string]any{"deal_id": dealID.String(), "message_id": messageID}
		s.logg.Info(s.logg.WithFields(ctx, fields), "agreement render requested")
	}
	return &RenderReceipt{DealID: dealID, MessageID: messageID}, nil
}

func orPlaceholder(value string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}

// maskAadhar keeps the last four digits and hides the rest.
func maskAadhar(aadhar string) string {
	digits := digitsOnly(aadhar)
	if len(digits) < 4 {
		return ""
	}
	return "XXXX-XXXX-" + digits[len(digits)-4:]
}

func digitsOnly(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// estimateTotal multiplies the leading numbers of the free-text price and
// quantity fields. Both fields carry units ("₹2,600/qtl", "80 qtl"), so the
// parse is best-effort and the total is omitted when either side is not a
// number.
func estimateTotal(price, quantity string) string {
	priceValue, ok := leadingDecimal(price)
	if !ok {
		return ""
	}
	qtyValue, ok := leadingDecimal(quantity)
	if !ok {
		return ""
	}
	total := priceValue.Mul(qtyValue)
	return "₹" + total.String()
}

func leadingDecimal(value string) (decimal.Decimal, bool) {
	cleaned := strings.TrimSpace(value)
	cleaned = strings.TrimPrefix(cleaned, "₹")
	cleaned = strings.ReplaceAll(cleaned, ",", "")

	end := 0
	seenDot := false
	for end < len(cleaned) {
		c := cleaned[end]
		if c >= '0' && c <= '9' {
			end++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			end++
			continue
		}
		break
	}
	if end == 0 {
		return decimal.Zero, false
	}
	parsed, err := decimal.NewFromString(strings.TrimSuffix(cleaned[:end], "."))
	if err != nil {
		return decimal.Zero, false
	}
	return parsed, true
}
