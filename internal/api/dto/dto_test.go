package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
	errorutil "github.com/spec-kit/helpdesk/pkg/errorutil"
)

func TestValidateUserRequest(t *testing.T) {
	ok := UserRequest{Name: "A", Email: "a@x.com", Phone: "111", Role: domain.RoleCustomer}
	require.NoError(t, Validate(ok))

	bad := UserRequest{Name: "A", Email: "not-an-email", Phone: "111", Role: "GUEST"}
	err := Validate(bad)
	require.Error(t, err)
	domainErr := errorutil.ToDomainError(err)
	assert.Equal(t, errorutil.CodeValidation, domainErr.Code)
	assert.Equal(t, "email", domainErr.Details["email"])
	assert.Equal(t, "oneof", domainErr.Details["role"])
}

func TestValidateRejectsBlankText(t *testing.T) {
	err := Validate(UserRequest{Name: "  ", Email: "a@x.com", Phone: "\t", Role: domain.RoleCustomer})
	require.Error(t, err)
	details := errorutil.ToDomainError(err).Details
	assert.Equal(t, "notblank", details["name"])
	assert.Equal(t, "notblank", details["phone"])

	err = Validate(TicketRequest{Issue: "   ", RaisedBy: 1})
	require.Error(t, err)
	assert.Equal(t, "notblank", errorutil.ToDomainError(err).Details["issue"])
}

func TestValidateUpdateTicketRequest(t *testing.T) {
	err := Validate(UpdateTicketRequest{TicketRequest: TicketRequest{Issue: "x", RaisedBy: 1}})
	require.Error(t, err)
	assert.Equal(t, "required", errorutil.ToDomainError(err).Details["id"])

	require.NoError(t, Validate(UpdateTicketRequest{ID: 1, TicketRequest: TicketRequest{Issue: "x", RaisedBy: 1}}))
}

func TestTicketDTOWireFormat(t *testing.T) {
	raisedOn, err := domain.ParseDate("2024-01-01")
	require.NoError(t, err)
	executive := int64(2)
	ticket := &domain.Ticket{
		ID:         1,
		Issue:      "printer",
		RaisedBy:   1,
		RaisedOn:   raisedOn,
		AssignedTo: &executive,
		AssignedOn: &raisedOn,
		Status:     domain.TicketStatusAssigned,
	}

	body, err := json.Marshal(FromTicket(ticket))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 1,
		"issue": "printer",
		"raisedBy": 1,
		"raisedOn": "2024-01-01",
		"assignedTo": 2,
		"assignedOn": "2024-01-01",
		"closedOn": null,
		"status": "ASSIGNED"
	}`, string(body))

	var decoded TicketDTO
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, *ticket, decoded.ToDomain())
}

func TestTicketRequestInputDropsEmptyDates(t *testing.T) {
	var req TicketRequest
	require.NoError(t, json.Unmarshal([]byte(`{"issue":"vpn","raisedBy":3,"raisedOn":"","closedOn":null}`), &req))

	input := req.Input()
	assert.Nil(t, input.RaisedOn)
	assert.Nil(t, input.ClosedOn)
	assert.Equal(t, int64(3), input.RaisedBy)
}

func TestFromListsNeverNil(t *testing.T) {
	assert.NotNil(t, FromUsers(nil))
	assert.NotNil(t, FromTickets(nil))
}
