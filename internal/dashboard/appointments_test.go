package dashboard

import (
	"context"
	"testing"
	"time"

	"healthcare-dashboard/internal/apperrors"
	"healthcare-dashboard/internal/client"
	"healthcare-dashboard/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixedIdentity struct{ user *client.User }

func (f fixedIdentity) CurrentUser() *client.User { return f.user }

type mockAppointmentAPI struct{ mock.Mock }

func (m *mockAppointmentAPI) CreateAppointment(ctx context.Context, req client.NewAppointment) (*client.Appointment, error) {
	args := m.Called(ctx, req)
	appt, _ := args.Get(0).(*client.Appointment)
	return appt, args.Error(1)
}

func (m *mockAppointmentAPI) AppointmentsByUser(ctx context.Context) ([]client.Appointment, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]client.Appointment)
	return list, args.Error(1)
}

func (m *mockAppointmentAPI) AppointmentsOfDoctor(ctx context.Context) ([]client.Appointment, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]client.Appointment)
	return list, args.Error(1)
}

func (m *mockAppointmentAPI) UpdateAppointmentStatus(ctx context.Context, id string, status domain.AppointmentStatus) (*client.Appointment, error) {
	args := m.Called(ctx, id, status)
	appt, _ := args.Get(0).(*client.Appointment)
	return appt, args.Error(1)
}

func (m *mockAppointmentAPI) RescheduleAppointment(ctx context.Context, id string, at time.Time) (*client.Appointment, error) {
	args := m.Called(ctx, id, at)
	appt, _ := args.Get(0).(*client.Appointment)
	return appt, args.Error(1)
}

func (m *mockAppointmentAPI) DeleteAppointment(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

var (
	testPatient = &client.User{ID: "u-1", Name: "Asha", Role: domain.RoleUser}
	testDoctor  = &client.User{ID: "d-1", Name: "Dr. Rao", Role: domain.RoleDoctor}
)

func appointment(status domain.AppointmentStatus, at time.Time) client.Appointment {
	return client.Appointment{ID: "a-1", CreatedByID: testPatient.ID, DoctorID: testDoctor.ID, DateTime: at, Status: status}
}

func TestCreateRefetchesAndToasts(t *testing.T) {
	api := new(mockAppointmentAPI)
	toasts := NewToaster(time.Minute)
	appts := NewAppointments(api, fixedIdentity{testPatient}, toasts)
	at := time.Now().Add(24 * time.Hour)

	api.On("CreateAppointment", mock.Anything, client.NewAppointment{DoctorID: testDoctor.ID, DateTime: at}).
		Return(&client.Appointment{ID: "a-1"}, nil).Once()
	api.On("AppointmentsByUser", mock.Anything).
		Return([]client.Appointment{appointment(domain.AppointmentPending, at)}, nil).Once()

	require.NoError(t, appts.Create(context.Background(), testDoctor.ID, at))

	list := appts.List()
	require.Len(t, list, 1)
	assert.Equal(t, domain.AppointmentPending, list[0].Status)
	assert.Equal(t, 1, appts.Summary()[domain.AppointmentPending])

	toast, ok := toasts.Current()
	require.True(t, ok)
	assert.Equal(t, ToastSuccess, toast.Kind)
	api.AssertExpectations(t)
}

func TestCreateRejectedLocally(t *testing.T) {
	future := time.Now().Add(time.Hour)
	tests := []struct {
		name     string
		who      *client.User
		doctorID string
		at       time.Time
		kind     apperrors.Kind
		toasted  bool
	}{
		{"missing doctor", testPatient, "", future, apperrors.KindValidation, false},
		{"missing time", testPatient, testDoctor.ID, time.Time{}, apperrors.KindValidation, false},
		{"past time", testPatient, testDoctor.ID, time.Now().Add(-time.Hour), apperrors.KindValidation, false},
		{"doctor books", testDoctor, "d-2", future, apperrors.KindPermission, true},
		{"books self", testPatient, testPatient.ID, future, apperrors.KindPermission, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(mockAppointmentAPI)
			toasts := NewToaster(time.Minute)
			appts := NewAppointments(api, fixedIdentity{tt.who}, toasts)

			err := appts.Create(context.Background(), tt.doctorID, tt.at)
			assert.Equal(t, tt.kind, apperrors.KindOf(err))
			_, shown := toasts.Current()
			assert.Equal(t, tt.toasted, shown)
			api.AssertNotCalled(t, "CreateAppointment", mock.Anything, mock.Anything)
		})
	}
}

func TestDeleteAcceptedIsRejectedWithoutCall(t *testing.T) {
	api := new(mockAppointmentAPI)
	appts := NewAppointments(api, fixedIdentity{testPatient}, NewToaster(time.Minute))
	accepted := appointment(domain.AppointmentAccepted, time.Now().Add(time.Hour))
	api.On("AppointmentsByUser", mock.Anything).Return([]client.Appointment{accepted}, nil).Once()
	require.NoError(t, appts.Refresh(context.Background()))

	err := appts.Delete(context.Background(), accepted.ID)
	assert.True(t, apperrors.IsState(err))
	assert.Equal(t, []client.Appointment{accepted}, appts.List())
	assert.False(t, appts.ActionsFor(accepted).Delete)
	api.AssertNotCalled(t, "DeleteAppointment", mock.Anything, mock.Anything)
}

func TestDoctorStatusChanges(t *testing.T) {
	api := new(mockAppointmentAPI)
	appts := NewAppointments(api, fixedIdentity{testDoctor}, NewToaster(time.Minute))
	at := time.Now().Add(time.Hour)
	pending := appointment(domain.AppointmentPending, at)
	accepted := appointment(domain.AppointmentAccepted, at)

	api.On("AppointmentsOfDoctor", mock.Anything).Return([]client.Appointment{pending}, nil).Once()
	list, err := appts.ListMine(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)

	actions := appts.ActionsFor(pending)
	assert.False(t, actions.Edit)
	assert.ElementsMatch(t, []domain.AppointmentStatus{domain.AppointmentAccepted, domain.AppointmentRejected}, actions.Statuses)

	err = appts.UpdateStatus(context.Background(), pending.ID, domain.AppointmentCompleted)
	assert.True(t, apperrors.IsState(err))

	api.On("UpdateAppointmentStatus", mock.Anything, pending.ID, domain.AppointmentAccepted).Return(&accepted, nil).Once()
	api.On("AppointmentsOfDoctor", mock.Anything).Return([]client.Appointment{accepted}, nil).Once()
	require.NoError(t, appts.UpdateStatus(context.Background(), pending.ID, domain.AppointmentAccepted))

	got, ok := appts.Find(pending.ID)
	require.True(t, ok)
	assert.Equal(t, domain.AppointmentAccepted, got.Status)
	api.AssertNotCalled(t, "AppointmentsByUser", mock.Anything)
	api.AssertExpectations(t)
}

func TestRescheduleUnknownAppointment(t *testing.T) {
	api := new(mockAppointmentAPI)
	toasts := NewToaster(time.Minute)
	appts := NewAppointments(api, fixedIdentity{testPatient}, toasts)

	err := appts.UpdateSchedule(context.Background(), "missing", time.Now().Add(time.Hour))
	assert.True(t, apperrors.IsNotFound(err))
	toast, ok := toasts.Current()
	require.True(t, ok)
	assert.Equal(t, ToastError, toast.Kind)
}

func TestServerErrorIsToasted(t *testing.T) {
	api := new(mockAppointmentAPI)
	toasts := NewToaster(time.Minute)
	appts := NewAppointments(api, fixedIdentity{testPatient}, toasts)
	api.On("AppointmentsByUser", mock.Anything).Return(nil, apperrors.Network("connection refused", nil))

	err := appts.Refresh(context.Background())
	assert.True(t, apperrors.IsNetwork(err))
	toast, ok := toasts.Current()
	require.True(t, ok)
	assert.Equal(t, "connection refused", toast.Message)
	assert.False(t, appts.Loading())
}

func TestResultAfterCloseIsDiscarded(t *testing.T) {
	api := new(mockAppointmentAPI)
	toasts := NewToaster(time.Minute)
	appts := NewAppointments(api, fixedIdentity{testPatient}, toasts)

	release := make(chan time.Time)
	api.On("AppointmentsByUser", mock.Anything).
		WaitUntil(release).
		Return([]client.Appointment{appointment(domain.AppointmentPending, time.Now().Add(time.Hour))}, nil)

	errc := make(chan error, 1)
	go func() { errc <- appts.Refresh(context.Background()) }()

	assert.Eventually(t, appts.Loading, time.Second, 5*time.Millisecond)
	appts.Close()
	close(release)

	assert.ErrorIs(t, <-errc, ErrClosed)
	assert.Empty(t, appts.List())
	_, shown := toasts.Current()
	assert.False(t, shown)

	assert.ErrorIs(t, appts.Refresh(context.Background()), ErrClosed)
}
