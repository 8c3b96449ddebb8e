package models

import (
	"context"
	"time"

	"github.com/roufai-ne/crou-management-system-sub011/config"
	"github.com/roufai-ne/crou-management-system-sub011/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HousingAssignment struct {
	ID            int        `gorm:"primary_key" json:"id"`
	CrouId        string     `gorm:"type:char(36);index;not null" json:"crou_id"`
	RoomId        int        `gorm:"index;not null" json:"room_id" binding:"required"`
	StudentNumber string     `gorm:"size:50;index;not null" json:"student_number" binding:"required"`
	StudentName   string     `gorm:"size:255" json:"student_name"`
	AcademicYear  string     `gorm:"size:10;index" json:"academic_year"`
	StartDate     time.Time  `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
	IsActive      *bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewHousingAssignment struct {
	RoomId        int       `json:"room_id" binding:"required"`
	StudentNumber string    `json:"student_number" binding:"required"`
	StudentName   string    `json:"student_name"`
	AcademicYear  string    `json:"academic_year"`
	StartDate     time.Time `json:"start_date"`
}

func (obj HousingAssignment) GetId() int {
	return obj.ID
}

// CreateHousingAssignment places a student in a room. The room row is locked
// so two concurrent assignments cannot both see a free bed.
func CreateHousingAssignment(ctx context.Context, input *NewHousingAssignment) (*HousingAssignment, error) {
	crouId, ok := utils.GetCrouIdFromContext(ctx)
	if !ok || crouId == "" {
		return nil, utils.Validation("crou id is required")
	}

	db := config.GetDB()
	var assignment *HousingAssignment

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room Room
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND crou_id = ?", input.RoomId, crouId).
			Take(&room).Error
		if err != nil {
			return utils.ErrorRecordNotFound
		}
		if room.Occupied >= room.Capacity {
			return utils.Validation("room is full")
		}

		var count int64
		err = tx.Model(&HousingAssignment{}).
			Where("crou_id = ? AND student_number = ? AND academic_year = ? AND is_active = ?",
				crouId, input.StudentNumber, input.AcademicYear, true).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return utils.Validation("student already housed for this academic year")
		}

		startDate := input.StartDate
		if startDate.IsZero() {
			startDate = time.Now()
		}
		assignment = &HousingAssignment{
			CrouId:        crouId,
			RoomId:        input.RoomId,
			StudentNumber: input.StudentNumber,
			StudentName:   input.StudentName,
			AcademicYear:  input.AcademicYear,
			StartDate:     startDate,
			IsActive:      utils.NewTrue(),
		}
		if err := tx.Create(assignment).Error; err != nil {
			return err
		}

		room.Occupied++
		return tx.Save(&room).Error
	})
	if err != nil {
		return nil, err
	}

	RecordAudit(ctx, AuditActionCreate, "housing_assignments", input.StudentNumber, nil, assignment, true, "")
	return assignment, nil
}

// EndHousingAssignment releases the bed and closes the assignment.
func EndHousingAssignment(ctx context.Context, id int) (*HousingAssignment, error) {
	crouId, ok := utils.GetCrouIdFromContext(ctx)
	if !ok || crouId == "" {
		return nil, utils.Validation("crou id is required")
	}

	db := config.GetDB()
	var assignment HousingAssignment

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND crou_id = ?", id, crouId).
			Take(&assignment).Error
		if err != nil {
			return utils.ErrorRecordNotFound
		}
		if assignment.IsActive == nil || !*assignment.IsActive {
			return utils.Validation("assignment already ended")
		}

		now := time.Now()
		assignment.EndDate = &now
		assignment.IsActive = utils.NewFalse()
		if err := tx.Save(&assignment).Error; err != nil {
			return err
		}

		return tx.Model(&Room{}).
			Where("id = ? AND occupied > 0", assignment.RoomId).
			UpdateColumn("occupied", gorm.Expr("occupied - 1")).Error
	})
	if err != nil {
		return nil, err
	}

	RecordAudit(ctx, AuditActionUpdate, "housing_assignments", assignment.StudentNumber, nil, assignment, true, "assignment ended")
	return &assignment, nil
}

func ListHousingAssignments(ctx context.Context, academicYear *string, activeOnly bool) ([]*HousingAssignment, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Model(&HousingAssignment{})
	if academicYear != nil && *academicYear != "" {
		dbCtx.Where("academic_year = ?", *academicYear)
	}
	if activeOnly {
		dbCtx.Where("is_active = ?", true)
	}
	var assignments []*HousingAssignment
	if err := dbCtx.Order("id DESC").Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// OccupancySummaryRow feeds the occupancy report.
type OccupancySummaryRow struct {
	CrouId        string `json:"crou_id"`
	ResidenceName string `json:"residence_name"`
	RoomCount     int    `json:"room_count"`
	Capacity      int    `json:"capacity"`
	Occupied      int    `json:"occupied"`
}

// GetOccupancySummary aggregates per residence. An empty crouId covers every
// tenant (ministry network-wide reports). Raw SQL: crou_id must be filtered
// manually here, the tenant guard does not rewrite raw queries.
func GetOccupancySummary(ctx context.Context, crouId string) ([]*OccupancySummaryRow, error) {
	sql := `
SELECT
    residences.crou_id,
    residences.name AS residence_name,
    COUNT(rooms.id) AS room_count,
    COALESCE(SUM(rooms.capacity), 0) AS capacity,
    COALESCE(SUM(rooms.occupied), 0) AS occupied
FROM residences
    LEFT JOIN rooms ON rooms.residence_id = residences.id
WHERE (? = '' OR residences.crou_id = ?)
GROUP BY residences.id
ORDER BY residences.crou_id, residences.name;
`
	var rows []*OccupancySummaryRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, crouId, crouId).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
