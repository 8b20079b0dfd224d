package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chiragvgohil-05/soffa-clg/internal/domain/model"
	repo "github.com/chiragvgohil-05/soffa-clg/internal/repository"
	"github.com/chiragvgohil-05/soffa-clg/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAdminUsecase(gw *AdminGatewayMock, audit *AuditRepoMock) *usecase.AdminUsecase {
	return usecase.NewAdminUsecase(gw, newFakeSession(), audit, nil)
}

func sampleOrders() []model.Order {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return []model.Order{
		{ID: "665f00000000aa0001", CustomerName: "Asha", CustomerEmail: "asha@example.com", Status: model.OrderStatusPaid, CreatedAt: base},
		{ID: "665f00000000aa0002", RazorpayOrderID: "order_R2", CustomerName: "Ravi", Status: model.OrderStatusPending, CreatedAt: base.Add(time.Hour)},
		{ID: "665f00000000aa0003", CustomerName: "Meera", Status: model.OrderStatusPaid, CreatedAt: base.Add(2 * time.Hour)},
	}
}

func TestAdminUsecase_ListOrders_InvalidStatus(t *testing.T) {
	uc := newAdminUsecase(new(AdminGatewayMock), new(AuditRepoMock))

	_, err := uc.ListOrders(context.Background(), usecase.AdminOrderListInput{Page: 1, Limit: 20, Status: "shipped"})
	assertErrContains(t, err, "invalid status")
}

func TestAdminUsecase_ListOrders_NewestFirstWithDisplayID(t *testing.T) {
	gw := new(AdminGatewayMock)
	gw.On("ListOrders", mock.Anything).Return(sampleOrders(), nil).Once()
	uc := newAdminUsecase(gw, new(AuditRepoMock))

	out, err := uc.ListOrders(context.Background(), usecase.AdminOrderListInput{Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, out.Items, 3)
	assert.Equal(t, "665f00000000aa0003", out.Items[0].ID)
	assert.Equal(t, "ORD-aa0003", out.Items[0].DisplayID)
	assert.Equal(t, "order_R2", out.Items[1].DisplayID)
}

func TestAdminUsecase_ListOrders_SearchStatusAndPaging(t *testing.T) {
	gw := new(AdminGatewayMock)
	gw.On("ListOrders", mock.Anything).Return(sampleOrders(), nil)
	uc := newAdminUsecase(gw, new(AuditRepoMock))
	ctx := context.Background()

	out, err := uc.ListOrders(ctx, usecase.AdminOrderListInput{Page: 1, Limit: 20, Q: "asha@"})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "Asha", out.Items[0].CustomerName)

	out, err = uc.ListOrders(ctx, usecase.AdminOrderListInput{Page: 1, Limit: 20, Q: "ord-aa0001"})
	require.NoError(t, err)
	assert.Len(t, out.Items, 1)

	out, err = uc.ListOrders(ctx, usecase.AdminOrderListInput{Page: 2, Limit: 1, Status: "PAID"})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Total)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "Asha", out.Items[0].CustomerName)
}

func TestAdminUsecase_Dashboard_EmptyBecomesObject(t *testing.T) {
	gw := new(AdminGatewayMock)
	gw.On("Dashboard", mock.Anything).Return(nil, nil).Once()
	uc := newAdminUsecase(gw, new(AuditRepoMock))

	raw, err := uc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))
}

func TestAdminUsecase_ListUsers_Search(t *testing.T) {
	gw := new(AdminGatewayMock)
	gw.On("ListUsers", mock.Anything).Return([]model.User{
		{ID: "u1", Name: "Asha", Email: "asha@example.com"},
		{ID: "u2", Name: "Ravi", Email: "ravi@example.com"},
	}, nil).Once()
	uc := newAdminUsecase(gw, new(AuditRepoMock))

	users, err := uc.ListUsers(context.Background(), "RAVI")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "u2", users[0].ID)
}

func TestAdminUsecase_DeleteUser_CannotDeleteSelf(t *testing.T) {
	gw := new(AdminGatewayMock)
	uc := newAdminUsecase(gw, new(AuditRepoMock))

	err := uc.DeleteUser(context.Background(), "u1")
	assertErrContains(t, err, "cannot delete yourself")
	gw.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
}

func TestAdminUsecase_DeleteOrder_WritesAuditLog(t *testing.T) {
	gw := new(AdminGatewayMock)
	audit := new(AuditRepoMock)
	gw.On("DeleteOrder", mock.Anything, "o9").Return(nil).Once()
	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.ActorUserID == "u1" && l.Action == model.AuditActionDeleteOrder && l.ResourceID == "o9"
	})).Return(nil).Once()
	uc := newAdminUsecase(gw, audit)

	require.NoError(t, uc.DeleteOrder(context.Background(), "o9"))
	gw.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestAdminUsecase_DeleteUser_BackendErrorNoAuditLog(t *testing.T) {
	gw := new(AdminGatewayMock)
	audit := new(AuditRepoMock)
	gw.On("DeleteUser", mock.Anything, "u2").Return(errors.New("boom")).Once()
	uc := newAdminUsecase(gw, audit)

	assert.Error(t, uc.DeleteUser(context.Background(), "u2"))
	audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAdminUsecase_DeleteUser_AuditFailureDoesNotFail(t *testing.T) {
	gw := new(AdminGatewayMock)
	audit := new(AuditRepoMock)
	gw.On("DeleteUser", mock.Anything, "u2").Return(nil).Once()
	audit.On("Create", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
	uc := newAdminUsecase(gw, audit)

	assert.NoError(t, uc.DeleteUser(context.Background(), "u2"))
}

func TestAdminUsecase_ListAuditLogs(t *testing.T) {
	audit := new(AuditRepoMock)
	action := model.AuditActionDeleteUser
	audit.On("List", mock.Anything, repo.AuditLogFilter{Action: &action, Limit: 10, Offset: 10}).
		Return([]model.AuditLog{{ID: 3}}, nil).Once()
	uc := newAdminUsecase(new(AdminGatewayMock), audit)

	logs, err := uc.ListAuditLogs(context.Background(), usecase.AuditLogListInput{Page: 2, Limit: 10, Action: "delete_user"})
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	_, err = uc.ListAuditLogs(context.Background(), usecase.AuditLogListInput{Page: 1, Limit: 10, Action: "nope"})
	assertErrContains(t, err, "invalid action")
}

func TestAdminUsecase_ListAuditLogs_ActorResourceRange(t *testing.T) {
	audit := new(AuditRepoMock)
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	audit.On("List", mock.Anything, mock.MatchedBy(func(f repo.AuditLogFilter) bool {
		return f.ActorUserID != nil && *f.ActorUserID == "a1" &&
			f.ResourceType != nil && *f.ResourceType == model.AuditResourceUser &&
			f.CreatedFrom.Equal(from) && f.CreatedTo.Equal(to)
	})).Return([]model.AuditLog{}, nil).Once()
	uc := newAdminUsecase(new(AdminGatewayMock), audit)

	_, err := uc.ListAuditLogs(context.Background(), usecase.AuditLogListInput{
		Page: 1, Limit: 10, Actor: " a1 ", Resource: "USER", From: &from, To: &to,
	})
	require.NoError(t, err)
	audit.AssertExpectations(t)

	_, err = uc.ListAuditLogs(context.Background(), usecase.AuditLogListInput{Page: 1, Limit: 10, Resource: "product"})
	assertErrContains(t, err, "invalid resource")

	_, err = uc.ListAuditLogs(context.Background(), usecase.AuditLogListInput{Page: 1, Limit: 10, From: &to, To: &from})
	assertErrContains(t, err, "invalid range")
}
