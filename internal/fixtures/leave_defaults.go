package fixtures

import (
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/shopspring/decimal"
)

// ==========================================
// HELPER FUNCTIONS
// ==========================================

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

// ==========================================
// DEFAULT LEAVE TYPES
// ==========================================

// GetDefaultLeaveTypes returns the leave catalog seeded on an empty store
func GetDefaultLeaveTypes() []leave.LeaveType {
	return []leave.LeaveType{
		// Annual Leave - the only seeded type that allows half days
		{
			Code:              "ANNUAL",
			Name:              "Annual Leave",
			Description:       strPtr("Yearly paid leave entitlement"),
			IsPaid:            true,
			RequiresApproval:  true,
			AllowHalfDay:      true,
			IsActive:          true,
			MaxDaysPerRequest: intPtr(30),
			MinDaysNotice:     intPtr(3),
			DefaultDays:       decimal.NewFromInt(21),
		},

		// Sick Leave
		{
			Code:               "SICK",
			Name:               "Sick Leave",
			Description:        strPtr("Sick leave, medical certificate required"),
			IsPaid:             true,
			RequiresApproval:   true,
			RequiresAttachment: true,
			IsActive:           true,
			MaxDaysPerRequest:  intPtr(10),
			DefaultDays:        decimal.NewFromInt(15),
		},

		// Emergency Leave
		{
			Code:              "EMERGENCY",
			Name:              "Emergency Leave",
			Description:       strPtr("Short notice leave for urgent family matters"),
			IsPaid:            true,
			RequiresApproval:  true,
			IsActive:          true,
			MaxDaysPerRequest: intPtr(3),
			DefaultDays:       decimal.NewFromInt(5),
		},

		// Maternity Leave
		{
			Code:             "MATERNITY",
			Name:             "Maternity Leave",
			IsPaid:           true,
			RequiresApproval: true,
			IsActive:         true,
			MinDaysNotice:    intPtr(30),
			DefaultDays:      decimal.NewFromInt(70),
		},

		// Paternity Leave
		{
			Code:             "PATERNITY",
			Name:             "Paternity Leave",
			IsPaid:           true,
			RequiresApproval: true,
			IsActive:         true,
			MinDaysNotice:    intPtr(7),
			DefaultDays:      decimal.NewFromInt(3),
		},
	}
}
