package services

import (
	"fmt"
	"os"
	"testing"

	"github.com/edstack/institute-api/database"
	"github.com/edstack/institute-api/model"
	"github.com/edstack/institute-api/utils/apperror"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		getEnvOrDefault("DB_HOST", "localhost"),
		getEnvOrDefault("DB_USER_NAME", "postgres"),
		getEnvOrDefault("DB_PASSWORD", "postgres"),
		getEnvOrDefault("DB_NAME", "institute_test"),
		getEnvOrDefault("DB_PORT", "5432"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(&model.Institute{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		db.Exec("DELETE FROM institutes")
	})

	return db
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func createRequest(name, code, email string) CreateInstituteRequest {
	return CreateInstituteRequest{
		Name:    name,
		Code:    code,
		Type:    "university",
		Address: "42 Campus Road",
		Email:   email,
	}
}

// mustCreate runs a Create inside its own transaction and fails the test on error
func mustCreate(t *testing.T, db *gorm.DB, svc *InstituteService, req CreateInstituteRequest, actorID uuid.UUID) *model.Institute {
	t.Helper()
	inst, err := database.ExecuteInTransaction(db, func(tx *gorm.DB) (*model.Institute, error) {
		return svc.Create(tx, req, actorID)
	})
	if err != nil {
		t.Fatalf("create %q failed: %v", req.Code, err)
	}
	return inst
}

func assertAppError(t *testing.T, err error, wantStatus int, wantMessage string) {
	t.Helper()
	appErr, ok := err.(*apperror.AppError)
	if !ok {
		t.Fatalf("expected *apperror.AppError, got %T: %v", err, err)
	}
	if appErr.StatusCode != wantStatus {
		t.Errorf("status = %d, want %d", appErr.StatusCode, wantStatus)
	}
	if appErr.Message != wantMessage {
		t.Errorf("message = %q, want %q", appErr.Message, wantMessage)
	}
}

func TestCreateInstitute(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInstituteService(db)
	actorID := uuid.New()

	inst := mustCreate(t, db, svc, createRequest("Create University", "CRT-1", "create@svc-test.example.com"), actorID)

	if inst.ID == uuid.Nil {
		t.Error("expected generated UUID")
	}
	if !inst.IsActive {
		t.Error("new institutes must start active")
	}
	if inst.CreatedBy == nil || *inst.CreatedBy != actorID {
		t.Error("createdBy not stamped with the acting user")
	}
	if inst.UpdatedBy == nil || *inst.UpdatedBy != actorID {
		t.Error("updatedBy not stamped with the acting user")
	}
}

func TestCreateInstituteDuplicateCode(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInstituteService(db)
	actorID := uuid.New()

	mustCreate(t, db, svc, createRequest("Dup Code A", "DUP-C", "dupcode-a@svc-test.example.com"), actorID)

	_, err := database.ExecuteInTransaction(db, func(tx *gorm.DB) (*model.Institute, error) {
		return svc.Create(tx, createRequest("Dup Code B", "DUP-C", "dupcode-b@svc-test.example.com"), actorID)
	})
	assertAppError(t, err, 400, "Institute code already exists")
}

func TestCreateInstituteDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInstituteService(db)
	actorID := uuid.New()

	mustCreate(t, db, svc, createRequest("Dup Email A", "DUP-E1", "dup@svc-test.example.com"), actorID)

	_, err := database.ExecuteInTransaction(db, func(tx *gorm.DB) (*model.Institute, error) {
		return svc.Create(tx, createRequest("Dup Email B", "DUP-E2", "dup@svc-test.example.com"), actorID)
	})
	assertAppError(t, err, 400, "Institute email already exists")
}

// When both code and email collide, the code probe runs first and wins.
func TestCreateInstituteCodeProbeWins(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInstituteService(db)
	actorID := uuid.New()

	mustCreate(t, db, svc, createRequest("Probe Order", "PRB-1", "probe@svc-test.example.com"), actorID)

	_, err := database.ExecuteInTransaction(db, func(tx *gorm.DB) (*model.Institute, error) {
		return svc.Create(tx, createRequest("Probe Order B", "PRB-1", "probe@svc-test.example.com"), actorID)
	})
	assertAppError(t, err, 400, "Institute code already exists")
}

func TestFindByIDNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInstituteService(db)

	_, err := svc.FindByID(uuid.New())
	assertAppError(t, err, 404, "Institute not found")
}

func TestUpdateInstitutePartial(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInstituteService(db)
	creatorID := uuid.New()
	updaterID := uuid.New()

	inst := mustCreate(t, db, svc, createRequest("Partial Update", "UPD-1", "partial@svc-test.example.com"), creatorID)

	newName := "Partial Update Renamed"
	updated, err := database.ExecuteInTransaction(db, func(tx *gorm.DB) (*model.Institute, error) {
		return svc.Update(tx, inst.ID, UpdateInstituteRequest{Name: &newName}, updaterID)
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if updated.Name != newName {
		t.Errorf("name = %q, want %q", updated.Name, newName)
	}
	// Untouched fields survive the merge
	if updated.Code != inst.Code || updated.Email != inst.Email {
		t.Error("update touched fields it was not given")
	}
	if updated.CreatedBy == nil || *updated.CreatedBy != creatorID {
		t.Error("createdBy must not change on update")
	}
	if updated.UpdatedBy == nil || *updated.UpdatedBy != updaterID {
		t.Error("updatedBy not restamped with the acting user")
	}
}

func TestUpdateInstituteDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInstituteService(db)
	actorID := uuid.New()

	mustCreate(t, db, svc, createRequest("Holder", "HLD-1", "holder@svc-test.example.com"), actorID)
	target := mustCreate(t, db, svc, createRequest("Target", "TGT-1", "target@svc-test.example.com"), actorID)

	takenEmail := "holder@svc-test.example.com"
	_, err := database.ExecuteInTransaction(db, func(tx *gorm.DB) (*model.Institute, error) {
		return svc.Update(tx, target.ID, UpdateInstituteRequest{Email: &takenEmail}, actorID)
	})
	assertAppError(t, err, 400, "Institute email already exists")
}

// Re-submitting the institute's own email must not trip the uniqueness probe.
func TestUpdateInstituteUnchangedEmailSkipsProbe(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInstituteService(db)
	actorID := uuid.New()

	inst := mustCreate(t, db, svc, createRequest("Same Email", "SAME-1", "same@svc-test.example.com"), actorID)

	sameEmail := inst.Email
	_, err := database.ExecuteInTransaction(db, func(tx *gorm.DB) (*model.Institute, error) {
		return svc.Update(tx, inst.ID, UpdateInstituteRequest{Email: &sameEmail}, actorID)
	})
	if err != nil {
		t.Fatalf("updating with the current email should succeed, got %v", err)
	}
}

func TestSoftDeleteKeepsRowAndBlocksReuse(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInstituteService(db)
	actorID := uuid.New()
	deactivatorID := uuid.New()

	inst := mustCreate(t, db, svc, createRequest("Deactivated U", "DEACT-1", "deact@svc-test.example.com"), actorID)

	deactivated, err := database.ExecuteInTransaction(db, func(tx *gorm.DB) (*model.Institute, error) {
		return svc.SoftDelete(tx, inst.ID, deactivatorID)
	})
	if err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}
	if deactivated.IsActive {
		t.Error("expected isActive=false after soft delete")
	}
	if deactivated.UpdatedBy == nil || *deactivated.UpdatedBy != deactivatorID {
		t.Error("updatedBy not restamped with the deactivating user")
	}
	if deactivated.CreatedBy == nil || *deactivated.CreatedBy != actorID {
		t.Error("createdBy must not change on soft delete")
	}

	// The row is still fetchable by ID
	fetched, err := svc.FindByID(inst.ID)
	if err != nil {
		t.Fatalf("deactivated institute must remain fetchable: %v", err)
	}
	if fetched.IsActive {
		t.Error("fetched row should be inactive")
	}

	// And its code still blocks new institutes
	_, err = database.ExecuteInTransaction(db, func(tx *gorm.DB) (*model.Institute, error) {
		return svc.Create(tx, createRequest("Deactivated Clone", "DEACT-1", "deact2@svc-test.example.com"), actorID)
	})
	assertAppError(t, err, 400, "Institute code already exists")
}

func TestDeleteInstitute(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInstituteService(db)
	actorID := uuid.New()

	inst := mustCreate(t, db, svc, createRequest("Hard Delete", "DEL-1", "del@svc-test.example.com"), actorID)

	deleted, err := database.ExecuteInTransaction(db, func(tx *gorm.DB) (bool, error) {
		return svc.Delete(tx, inst.ID)
	})
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if !deleted {
		t.Error("expected deleted=true")
	}

	_, err = svc.FindByID(inst.ID)
	assertAppError(t, err, 404, "Institute not found")
}

func TestDeleteInstituteNotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInstituteService(db)

	_, err := database.ExecuteInTransaction(db, func(tx *gorm.DB) (bool, error) {
		return svc.Delete(tx, uuid.New())
	})
	assertAppError(t, err, 404, "Institute not found")
}

func TestFindAllPaginationAndFilters(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInstituteService(db)
	actorID := uuid.New()

	for i := 1; i <= 5; i++ {
		req := createRequest(
			fmt.Sprintf("List University %02d", i),
			fmt.Sprintf("LST-%02d", i),
			fmt.Sprintf("list%02d@svc-test.example.com", i),
		)
		inst := mustCreate(t, db, svc, req, actorID)
		if i > 3 {
			_, err := database.ExecuteInTransaction(db, func(tx *gorm.DB) (*model.Institute, error) {
				return svc.SoftDelete(tx, inst.ID, actorID)
			})
			if err != nil {
				t.Fatalf("soft delete failed: %v", err)
			}
		}
	}

	// Page size 2 over 5 rows: 3 pages, last page short
	page3, err := svc.FindAll(InstituteFilters{}, Pagination{Page: 3, Limit: 2, SortBy: "code", SortOrder: "ASC"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if page3.Total != 5 || page3.TotalPages != 3 {
		t.Errorf("total=%d totalPages=%d, want 5 and 3", page3.Total, page3.TotalPages)
	}
	if len(page3.Data) != 1 {
		t.Errorf("last page length = %d, want 1", len(page3.Data))
	}

	// A page past the last one is empty but keeps the correct totals
	beyond, err := svc.FindAll(InstituteFilters{}, Pagination{Page: 4, Limit: 2})
	if err != nil {
		t.Fatalf("beyond-last page failed: %v", err)
	}
	if len(beyond.Data) != 0 {
		t.Errorf("beyond-last page length = %d, want 0", len(beyond.Data))
	}
	if beyond.Total != 5 || beyond.TotalPages != 3 {
		t.Errorf("beyond-last total=%d totalPages=%d, want 5 and 3", beyond.Total, beyond.TotalPages)
	}

	// isActive filter
	active := true
	activeList, err := svc.FindAll(InstituteFilters{IsActive: &active}, Pagination{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("active list failed: %v", err)
	}
	if activeList.Total != 3 {
		t.Errorf("active total = %d, want 3", activeList.Total)
	}

	inactive := false
	inactiveList, err := svc.FindAll(InstituteFilters{IsActive: &inactive}, Pagination{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("inactive list failed: %v", err)
	}
	if inactiveList.Total != 2 {
		t.Errorf("inactive total = %d, want 2", inactiveList.Total)
	}

	// No filter includes deactivated rows
	all, err := svc.FindAll(InstituteFilters{}, Pagination{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("unfiltered list failed: %v", err)
	}
	if all.Total != 5 {
		t.Errorf("unfiltered total = %d, want 5", all.Total)
	}

	// Case-insensitive search across name, code and email
	search, err := svc.FindAll(InstituteFilters{Search: "lst-01"}, Pagination{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if search.Total != 1 {
		t.Errorf("search total = %d, want 1", search.Total)
	}
}

func TestFindAllIgnoresUnknownSortColumn(t *testing.T) {
	db := setupTestDB(t)
	svc := NewInstituteService(db)
	actorID := uuid.New()

	mustCreate(t, db, svc, createRequest("Sort Guard", "SRT-1", "sort@svc-test.example.com"), actorID)

	// An unknown sortBy must not be interpolated into the query
	list, err := svc.FindAll(InstituteFilters{}, Pagination{Page: 1, Limit: 10, SortBy: "institute_name; DROP TABLE institutes"})
	if err != nil {
		t.Fatalf("list with bogus sort column failed: %v", err)
	}
	if list.Total != 1 {
		t.Errorf("total = %d, want 1", list.Total)
	}
}
