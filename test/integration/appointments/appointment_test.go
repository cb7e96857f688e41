// Integration tests for the appointments service. They require a
// running instance (TEST_SERVER_URL) backed by the same MongoDB the
// suite seeds through TEST_MONGO_URI, with the service configured for
// the UTC business timezone.
package appointments_test

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fixwell/pkg/model"
	"fixwell/test/testutil"
)

func seedCatalog(t *testing.T, mongo *testutil.MongoHelper) string {
	t.Helper()
	serviceTypeID := testutil.NewServiceTypeBuilder().Seed(t, mongo)
	for day := 0; day < 7; day++ {
		testutil.NewRuleBuilder(day).Seed(t, mongo)
	}
	return serviceTypeID
}

func decodeAppointment(t *testing.T, resp *testutil.Response) model.Appointment {
	t.Helper()
	var envelope struct {
		Data model.Appointment `json:"data"`
	}
	require.NoError(t, resp.DecodeJSON(&envelope), "body: %s", string(resp.Body))
	return envelope.Data
}

func TestBookingLifecycle(t *testing.T) {
	env := testutil.NewTestEnv(t)
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	serviceTypeID := seedCatalog(t, mongo)
	start := testutil.NextBookableDay(time.Monday, 10)

	resp := client.POST(t, "/api/v1/appointments", testutil.AppointmentRequest(serviceTypeID, start))
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", string(resp.Body))

	appt := decodeAppointment(t, resp)
	require.NotEmpty(t, appt.ID)
	require.Equal(t, model.StatusConfirmed, appt.Status, "no approval required, so the booking auto-confirms")
	require.Equal(t, 60, appt.DurationMinutes, "duration is snapshotted from the catalog")

	resp = client.POST(t, "/api/v1/appointments/"+appt.ID+"/complete", map[string]any{"notes": "all gutters cleared"})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", string(resp.Body))

	completed := decodeAppointment(t, resp)
	require.Equal(t, model.StatusCompleted, completed.Status)

	resp = client.POST(t, "/api/v1/appointments/"+appt.ID+"/cancel", map[string]any{"reason": "changed my mind"})
	require.Equal(t, http.StatusConflict, resp.StatusCode, "completed appointments cannot be cancelled")
	require.Equal(t, "CANNOT_CANCEL", testutil.ErrorCode(t, resp))
}

func TestDoubleBookingRejected(t *testing.T) {
	env := testutil.NewTestEnv(t)
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	serviceTypeID := seedCatalog(t, mongo)
	start := testutil.NextBookableDay(time.Tuesday, 11)

	resp := client.POST(t, "/api/v1/appointments", testutil.AppointmentRequest(serviceTypeID, start))
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", string(resp.Body))

	resp = client.POST(t, "/api/v1/appointments", testutil.AppointmentRequest(serviceTypeID, start))
	require.Equal(t, http.StatusConflict, resp.StatusCode, "body: %s", string(resp.Body))
	require.Equal(t, "BOOKING_CONFLICT", testutil.ErrorCode(t, resp))
}

func TestConcurrentBookingAdmitsExactlyOne(t *testing.T) {
	env := testutil.NewTestEnv(t)
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	serviceTypeID := seedCatalog(t, mongo)
	start := testutil.NextBookableDay(time.Wednesday, 9)

	const attempts = 5
	statuses := make([]int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp := client.POST(t, "/api/v1/appointments", testutil.AppointmentRequest(serviceTypeID, start))
			statuses[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	created := 0
	for _, status := range statuses {
		if status == http.StatusCreated {
			created++
		} else {
			require.Equal(t, http.StatusConflict, status, "losers must see a conflict, statuses: %v", statuses)
		}
	}
	require.Equal(t, 1, created, "exactly one booking may win the slot, statuses: %v", statuses)
}

func TestCancellationFreesTheSlot(t *testing.T) {
	env := testutil.NewTestEnv(t)
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	serviceTypeID := seedCatalog(t, mongo)
	start := testutil.NextBookableDay(time.Thursday, 13)

	resp := client.POST(t, "/api/v1/appointments", testutil.AppointmentRequest(serviceTypeID, start))
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", string(resp.Body))
	appt := decodeAppointment(t, resp)

	resp = client.POST(t, "/api/v1/appointments/"+appt.ID+"/cancel", map[string]any{"reason": "rescheduling"})
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", string(resp.Body))

	resp = client.POST(t, "/api/v1/appointments", testutil.AppointmentRequest(serviceTypeID, start))
	require.Equal(t, http.StatusCreated, resp.StatusCode, "cancelled appointments must not block the slot, body: %s", string(resp.Body))
}

func TestApprovalFlow(t *testing.T) {
	env := testutil.NewTestEnv(t)
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	serviceTypeID := testutil.NewServiceTypeBuilder().
		WithName("Roof Repair").
		WithApprovalRequired().
		Seed(t, mongo)
	for day := 0; day < 7; day++ {
		testutil.NewRuleBuilder(day).Seed(t, mongo)
	}
	start := testutil.NextBookableDay(time.Friday, 10)

	resp := client.POST(t, "/api/v1/appointments", testutil.AppointmentRequest(serviceTypeID, start))
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", string(resp.Body))
	appt := decodeAppointment(t, resp)
	require.Equal(t, model.StatusPending, appt.Status)

	resp = client.POST(t, "/api/v1/appointments/"+appt.ID+"/confirm", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", string(resp.Body))
	require.Equal(t, model.StatusConfirmed, decodeAppointment(t, resp).Status)
}

func TestConfirmationCodeLookup(t *testing.T) {
	env := testutil.NewTestEnv(t)
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	serviceTypeID := seedCatalog(t, mongo)
	start := testutil.NextBookableDay(time.Monday, 14)

	resp := client.POST(t, "/api/v1/appointments", testutil.AppointmentRequest(serviceTypeID, start))
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", string(resp.Body))
	appt := decodeAppointment(t, resp)
	if appt.ConfirmationCode == "" {
		t.Skip("confirmation codes are not enabled on this deployment")
	}

	resp = client.GET(t, "/api/v1/confirmations/"+appt.ConfirmationCode)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", string(resp.Body))
	require.Equal(t, appt.ID, decodeAppointment(t, resp).ID)
}

func TestDirectStatusPatchRejected(t *testing.T) {
	env := testutil.NewTestEnv(t)
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	serviceTypeID := seedCatalog(t, mongo)
	start := testutil.NextBookableDay(time.Tuesday, 15)

	resp := client.POST(t, "/api/v1/appointments", testutil.AppointmentRequest(serviceTypeID, start))
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", string(resp.Body))
	appt := decodeAppointment(t, resp)

	resp = client.PATCH(t, "/api/v1/appointments/"+appt.ID, map[string]any{"status": "CANCELLED"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode, "body: %s", string(resp.Body))
}

func TestListingByDate(t *testing.T) {
	env := testutil.NewTestEnv(t)
	mongo, client := env.Setup(t)
	defer env.Cleanup(t, mongo)

	serviceTypeID := seedCatalog(t, mongo)
	start := testutil.NextBookableDay(time.Wednesday, 10)

	resp := client.POST(t, "/api/v1/appointments", testutil.AppointmentRequest(serviceTypeID, start))
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %s", string(resp.Body))

	resp = client.GET(t, "/api/v1/appointments?date="+start.Format("2006-01-02"))
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", string(resp.Body))

	var page struct {
		Data       []model.Appointment `json:"data"`
		TotalCount int64               `json:"total_count"`
	}
	require.NoError(t, resp.DecodeJSON(&page))
	require.Equal(t, int64(1), page.TotalCount)
	require.Len(t, page.Data, 1)
}
