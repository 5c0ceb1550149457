package attendance

import (
	"context"
	"log"

	"github.com/VeriTime/VT-Backend/internal/config"
	"github.com/VeriTime/VT-Backend/internal/db"
	"github.com/VeriTime/VT-Backend/internal/notify"
	"github.com/VeriTime/VT-Backend/internal/org"
	"github.com/VeriTime/VT-Backend/internal/people"
	"github.com/google/uuid"
)

// Svc is the process-wide attendance service, wired in Init.
var Svc *Service

type directoryResolver struct{}

func (directoryResolver) Resolve(ctx context.Context, ref people.Ref) (*people.Person, error) {
	return people.Resolve(ctx, ref)
}

type orgPremises struct{}

func (orgPremises) VerifiedPremises(ctx context.Context, institutionID uuid.UUID) ([]org.Premise, error) {
	return org.VerifiedPremises(ctx, institutionID)
}

func (orgPremises) InstitutionTimezone(ctx context.Context, institutionID uuid.UUID) (string, error) {
	inst, err := org.FindInstitution(ctx, institutionID)
	if err != nil {
		return "", err
	}
	return inst.Timezone, nil
}

// approvalNotifier bridges pending check-ins into the notify package.
type approvalNotifier struct{}

func (approvalNotifier) ApprovalRequired(ctx context.Context, rec *Record, reason string) error {
	notice := notify.ApprovalNotice{
		PersonID:   rec.PersonID,
		EmployeeID: rec.EmployeeID,
		Date:       rec.Date,
		RecordID:   rec.ID,
		Method:     rec.Method,
		Reason:     reason,
	}
	if person, err := people.Resolve(ctx, people.Ref{PersonID: rec.PersonID.String()}); err == nil {
		notice.PersonName = person.FullName
	}
	if rec.CheckInLocation != nil {
		notice.Latitude = &rec.CheckInLocation.Latitude
		notice.Longitude = &rec.CheckInLocation.Longitude
	}
	return notify.CreateApprovalNotice(ctx, notice)
}

func Init() {
	if err := db.EnsureSchema(db.DB, "attendance"); err != nil {
		log.Fatal("Failed to ensure schema attendance: ", err)
	}

	if err := db.DB.AutoMigrate(&Record{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}

	policy, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal("Failed to load attendance policy: ", err)
	}
	log.Printf("[attendance] policy: workday %s, grace %dm, %s", policy.WorkdayStart, policy.GraceMinutes, policy.Timezone)

	Svc = NewService(NewStore(), directoryResolver{}, orgPremises{}, approvalNotifier{}, policy)
}
