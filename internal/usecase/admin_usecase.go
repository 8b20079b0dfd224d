package usecase

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/chiragvgohil-05/soffa-clg/internal/domain/model"
	repo "github.com/chiragvgohil-05/soffa-clg/internal/repository"
)

// AdminUsecase は管理画面の素通し。一覧の検索とページングだけこちらでやる。
// 削除は監査ログに残す。
type AdminUsecase struct {
	gateway repo.AdminGateway
	session Principal
	audit   repo.AuditLogRepository
	log     *slog.Logger
}

func NewAdminUsecase(gateway repo.AdminGateway, session Principal, audit repo.AuditLogRepository, logger *slog.Logger) *AdminUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminUsecase{
		gateway: gateway,
		session: session,
		audit:   audit,
		log:     logger.With(slog.String("component", "admin")),
	}
}

type AdminOrderListInput struct {
	Page   int
	Limit  int
	Q      string // 注文ID・顧客名・メール
	Status string
}

type AdminOrderOutput struct {
	model.Order
	DisplayID string `json:"displayId"`
}

type AdminOrderListOutput struct {
	Items []AdminOrderOutput `json:"items"`
	Total int                `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// 注文一覧（新しい順）
func (u *AdminUsecase) ListOrders(ctx context.Context, in AdminOrderListInput) (AdminOrderListOutput, error) {
	if in.Page < 1 {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	status := strings.ToLower(strings.TrimSpace(in.Status))
	switch model.OrderStatus(status) {
	case "", model.OrderStatusPending, model.OrderStatusPaid, model.OrderStatusFailed, model.OrderStatusCancelled:
	default:
		return AdminOrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	orders, err := u.gateway.ListOrders(ctx)
	if err != nil {
		return AdminOrderListOutput{}, err
	}

	q := strings.ToLower(strings.TrimSpace(in.Q))
	matched := make([]AdminOrderOutput, 0, len(orders))
	for _, o := range orders {
		if status != "" && !strings.EqualFold(string(o.Status), status) {
			continue
		}
		out := AdminOrderOutput{Order: o, DisplayID: o.DisplayID()}
		if q != "" && !orderMatches(out, q) {
			continue
		}
		matched = append(matched, out)
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	res := AdminOrderListOutput{
		Items: []AdminOrderOutput{},
		Total: len(matched),
		Page:  in.Page,
		Limit: in.Limit,
	}
	start := (in.Page - 1) * in.Limit
	if start < len(matched) {
		end := start + in.Limit
		if end > len(matched) {
			end = len(matched)
		}
		res.Items = matched[start:end]
	}
	return res, nil
}

func orderMatches(o AdminOrderOutput, q string) bool {
	for _, s := range []string{o.ID, o.DisplayID, o.RazorpayOrderID, o.CustomerName, o.CustomerEmail} {
		if strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}

func (u *AdminUsecase) DeleteOrder(ctx context.Context, orderID string) error {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := u.gateway.DeleteOrder(ctx, orderID); err != nil {
		return err
	}
	u.record(ctx, model.AuditActionDeleteOrder, model.AuditResourceOrder, orderID)
	return nil
}

// Dashboard は統計をそのまま返す（中身は見ない）
func (u *AdminUsecase) Dashboard(ctx context.Context) (json.RawMessage, error) {
	raw, err := u.gateway.Dashboard(ctx)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return json.RawMessage("{}"), nil
	}
	return raw, nil
}

func (u *AdminUsecase) ListUsers(ctx context.Context, q string) ([]model.User, error) {
	users, err := u.gateway.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return users, nil
	}
	out := make([]model.User, 0, len(users))
	for _, usr := range users {
		if strings.Contains(strings.ToLower(usr.Name), q) || strings.Contains(strings.ToLower(usr.Email), q) {
			out = append(out, usr)
		}
	}
	return out, nil
}

// 自分自身は削除させない
func (u *AdminUsecase) DeleteUser(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if userID == u.session.UserID() {
		return NewHTTPError(http.StatusBadRequest, "cannot delete yourself")
	}
	if err := u.gateway.DeleteUser(ctx, userID); err != nil {
		return err
	}
	u.record(ctx, model.AuditActionDeleteUser, model.AuditResourceUser, userID)
	return nil
}

type AuditLogListInput struct {
	Page     int
	Limit    int
	Action   string
	Actor    string // 操作した管理者のユーザーID
	Resource string // order / user
	From     *time.Time
	To       *time.Time
}

func (u *AdminUsecase) ListAuditLogs(ctx context.Context, in AuditLogListInput) ([]model.AuditLog, error) {
	if in.Page < 1 {
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 200 {
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	f := repo.AuditLogFilter{Limit: in.Limit, Offset: (in.Page - 1) * in.Limit}
	switch a := model.AuditAction(strings.ToUpper(strings.TrimSpace(in.Action))); a {
	case "":
	case model.AuditActionDeleteOrder, model.AuditActionDeleteUser:
		f.Action = &a
	default:
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid action")
	}
	switch r := model.AuditResourceType(strings.ToLower(strings.TrimSpace(in.Resource))); r {
	case "":
	case model.AuditResourceOrder, model.AuditResourceUser:
		f.ResourceType = &r
	default:
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid resource")
	}
	if actor := strings.TrimSpace(in.Actor); actor != "" {
		f.ActorUserID = &actor
	}
	if in.From != nil && in.To != nil && in.From.After(*in.To) {
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid range")
	}
	f.CreatedFrom = in.From
	f.CreatedTo = in.To

	logs, err := u.audit.List(ctx, f)
	if err != nil {
		return []model.AuditLog{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return logs, nil
}

// record は削除が終わってから書く。失敗しても削除は取り消せないのでログだけ。
func (u *AdminUsecase) record(ctx context.Context, action model.AuditAction, resource model.AuditResourceType, resourceID string) {
	err := u.audit.Create(ctx, model.AuditLog{
		ActorUserID:  u.session.UserID(),
		Action:       action,
		ResourceType: resource,
		ResourceID:   resourceID,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		u.log.Error("write audit log failed",
			slog.String("action", string(action)),
			slog.String("resource_id", resourceID),
			slog.String("error", err.Error()))
	}
}
