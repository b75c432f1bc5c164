package activities

import (
	"context"
	"errors"
	"testing"

	"github.com/Ndikilo/CatucSmartCampus-sub001/shared/models"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
)

type mockEnder struct {
	mock.Mock
}

func (m *mockEnder) EndSession(ctx context.Context, bookingID string) (*models.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

type ActivitiesTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite
	env   *testsuite.TestActivityEnvironment
	ender *mockEnder
}

func (s *ActivitiesTestSuite) SetupTest() {
	s.env = s.NewTestActivityEnvironment()
	s.ender = new(mockEnder)
	s.env.RegisterActivity(New(s.ender))
}

func (s *ActivitiesTestSuite) AfterTest(suiteName, testName string) {
	s.ender.AssertExpectations(s.T())
}

func TestActivitiesTestSuite(t *testing.T) {
	suite.Run(t, new(ActivitiesTestSuite))
}

func (s *ActivitiesTestSuite) TestEndOverdueSession_Ends() {
	s.ender.On("EndSession", mock.Anything, "b-1").
		Return(&models.Booking{ID: "b-1", ComputerName: "PC-101", Status: models.BookingStatusCompleted}, nil)

	val, err := s.env.ExecuteActivity("EndOverdueSession", EndOverdueSessionInput{BookingID: "b-1"})
	s.Require().NoError(err)

	var out EndOverdueSessionOutput
	s.Require().NoError(val.Get(&out))
	s.True(out.Ended)
	s.False(out.AlreadyEnded)
	s.Equal("PC-101", out.ComputerName)
}

func (s *ActivitiesTestSuite) TestEndOverdueSession_AlreadyCompleted() {
	s.ender.On("EndSession", mock.Anything, "b-2").Return(nil, models.ErrBookingAlreadyCompleted)

	val, err := s.env.ExecuteActivity("EndOverdueSession", EndOverdueSessionInput{BookingID: "b-2"})
	s.Require().NoError(err)

	var out EndOverdueSessionOutput
	s.Require().NoError(val.Get(&out))
	s.False(out.Ended)
	s.True(out.AlreadyEnded)
}

func (s *ActivitiesTestSuite) TestEndOverdueSession_NotFoundIsNonRetryable() {
	s.ender.On("EndSession", mock.Anything, "missing").Return(nil, models.ErrBookingNotFound)

	_, err := s.env.ExecuteActivity("EndOverdueSession", EndOverdueSessionInput{BookingID: "missing"})
	s.Require().Error(err)

	var appErr *temporal.ApplicationError
	s.Require().True(errors.As(err, &appErr))
	s.True(appErr.NonRetryable())
	s.Equal("BookingNotFound", appErr.Type())
}

func (s *ActivitiesTestSuite) TestEndOverdueSession_StoreFailure() {
	s.ender.On("EndSession", mock.Anything, "b-3").Return(nil, errors.New("connection refused"))

	_, err := s.env.ExecuteActivity("EndOverdueSession", EndOverdueSessionInput{BookingID: "b-3"})
	require.Error(s.T(), err)
	s.Contains(err.Error(), "connection refused")
}
