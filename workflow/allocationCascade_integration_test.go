package workflow_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/roufai-ne/crou-management-system-sub011/config"
	"github.com/roufai-ne/crou-management-system-sub011/models"
	"github.com/roufai-ne/crou-management-system-sub011/tenancy"
	"github.com/roufai-ne/crou-management-system-sub011/utils"
	"github.com/roufai-ne/crou-management-system-sub011/workflow"
	"github.com/shopspring/decimal"
)

func TestCascade_OverrunIsAllOrNothing(t *testing.T) {
	if strings.TrimSpace(os.Getenv("INTEGRATION_TESTS")) == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests (requires docker)")
	}

	ctx := context.Background()

	mysqlName, mysqlPort := startMySQLContainer(t)
	t.Cleanup(func() { _ = dockerRmForce(mysqlName) })

	t.Setenv("DB_USER", "root")
	t.Setenv("DB_PASSWORD", "testpw")
	t.Setenv("DB_HOST", "127.0.0.1")
	t.Setenv("DB_PORT", mysqlPort)
	t.Setenv("DB_NAME", "crou_test")

	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		t.Fatal("db is nil after ConnectDatabaseWithRetry")
	}
	models.MigrateTable()

	ctx = utils.SetUserIdInContext(ctx, 1)
	ctx = utils.SetUsernameInContext(ctx, "test@local")
	ctx = utils.SetIsMinistereInContext(ctx, true)

	ministry, err := models.CreateCrou(ctx, &models.NewCrou{
		Name: "Ministere", Code: "MESRI", TenantType: models.TenantTypeMinistere,
	})
	if err != nil {
		t.Fatalf("CreateCrou ministry: %v", err)
	}
	niamey, err := models.CreateCrou(ctx, &models.NewCrou{Name: "CROU Niamey", Code: "CR-NIM", Region: "Niamey"})
	if err != nil {
		t.Fatalf("CreateCrou niamey: %v", err)
	}
	zinder, err := models.CreateCrou(ctx, &models.NewCrou{Name: "CROU Zinder", Code: "CR-ZND", Region: "Zinder"})
	if err != nil {
		t.Fatalf("CreateCrou zinder: %v", err)
	}

	resolver := tenancy.NewResolver()
	tc, err := resolver.Resolve(ctx, &tenancy.Identity{
		UserId:   1,
		Username: "test@local",
		Role:     string(models.UserRoleMinistereAdmin),
		CrouId:   ministry.ID.String(),
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	ctx = utils.SetCrouIdInContext(ctx, ministry.ID.String())

	engine := workflow.NewEngine()

	parent, err := engine.CreateRootAllocation(ctx, tc, &models.NewAllocation{
		Type:       models.AllocationTypeBudget,
		CrouId:     ministry.ID.String(),
		Libelle:    "Dotation nationale 2026",
		FiscalYear: "2026",
		Amount:     decimal.NewFromInt(1_000_000),
	})
	if err != nil {
		t.Fatalf("CreateRootAllocation: %v", err)
	}

	// 600k + 500k > 1M: the whole cascade must fail, leaving zero children
	_, err = engine.CreateCascadingAllocation(ctx, tc, &workflow.CascadeInput{
		ParentAllocationId: parent.ID,
		Distributions: []models.Distribution{
			{TargetTenantId: niamey.ID.String(), Amount: decimal.NewFromInt(600_000), Libelle: "Part Niamey"},
			{TargetTenantId: zinder.ID.String(), Amount: decimal.NewFromInt(500_000), Libelle: "Part Zinder"},
		},
	})
	if err != utils.ErrAllocationOverrun {
		t.Fatalf("expected ErrAllocationOverrun, got %v", err)
	}
	children, err := models.ListChildren(ctx, parent.ID)
	if err != nil {
		t.Fatalf("ListChildren: %v", err)
	}
	if len(children) != 0 {
		t.Fatalf("overrun cascade left %d children behind", len(children))
	}

	// 600k + 400k fits exactly; ValidateParent advances the parent to Submitted
	created, err := engine.CreateCascadingAllocation(ctx, tc, &workflow.CascadeInput{
		ParentAllocationId: parent.ID,
		Distributions: []models.Distribution{
			{TargetTenantId: niamey.ID.String(), Amount: decimal.NewFromInt(600_000), Libelle: "Part Niamey"},
			{TargetTenantId: zinder.ID.String(), Amount: decimal.NewFromInt(400_000), Libelle: "Part Zinder"},
		},
		ValidateParent: true,
	})
	if err != nil {
		t.Fatalf("CreateCascadingAllocation: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("expected 2 children, got %d", len(created))
	}
	for _, child := range created {
		if child.Status != models.AllocationStatusDraft {
			t.Fatalf("child %d created as %s, expected Draft", child.ID, child.Status)
		}
	}

	refreshed, err := models.GetAllocation(ctx, parent.ID)
	if err != nil {
		t.Fatalf("GetAllocation: %v", err)
	}
	if refreshed.Status != models.AllocationStatusSubmitted {
		t.Fatalf("parent status %s, expected Submitted", refreshed.Status)
	}

	// the parent is now fully distributed; one more franc must overrun
	_, err = engine.CreateCascadingAllocation(ctx, tc, &workflow.CascadeInput{
		ParentAllocationId: parent.ID,
		Distributions: []models.Distribution{
			{TargetTenantId: niamey.ID.String(), Amount: decimal.NewFromInt(1), Libelle: "Rallonge"},
		},
	})
	if err != utils.ErrAllocationOverrun {
		t.Fatalf("expected ErrAllocationOverrun on exhausted parent, got %v", err)
	}

	// validate_parent may only submit a draft parent. With the parent
	// already Submitted it must refuse instead of advancing to Approved,
	// and the whole cascade rolls back with it.
	parent2, err := engine.CreateRootAllocation(ctx, tc, &models.NewAllocation{
		Type:       models.AllocationTypeBudget,
		CrouId:     ministry.ID.String(),
		Libelle:    "Dotation complementaire 2026",
		FiscalYear: "2026",
		Amount:     decimal.NewFromInt(1_000_000),
	})
	if err != nil {
		t.Fatalf("CreateRootAllocation: %v", err)
	}
	if _, err := engine.CreateCascadingAllocation(ctx, tc, &workflow.CascadeInput{
		ParentAllocationId: parent2.ID,
		Distributions: []models.Distribution{
			{TargetTenantId: niamey.ID.String(), Amount: decimal.NewFromInt(400_000), Libelle: "Part Niamey"},
		},
		ValidateParent: true,
	}); err != nil {
		t.Fatalf("CreateCascadingAllocation parent2: %v", err)
	}
	_, err = engine.CreateCascadingAllocation(ctx, tc, &workflow.CascadeInput{
		ParentAllocationId: parent2.ID,
		Distributions: []models.Distribution{
			{TargetTenantId: zinder.ID.String(), Amount: decimal.NewFromInt(300_000), Libelle: "Part Zinder"},
		},
		ValidateParent: true,
	})
	if err != utils.ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition on a submitted parent, got %v", err)
	}
	siblings, err := models.ListChildren(ctx, parent2.ID)
	if err != nil {
		t.Fatalf("ListChildren parent2: %v", err)
	}
	if len(siblings) != 1 {
		t.Fatalf("refused cascade must roll back entirely, got %d children", len(siblings))
	}
	parent2Refreshed, err := models.GetAllocation(ctx, parent2.ID)
	if err != nil {
		t.Fatalf("GetAllocation parent2: %v", err)
	}
	if parent2Refreshed.Status != models.AllocationStatusSubmitted {
		t.Fatalf("parent2 status %s after refused advance, expected Submitted", parent2Refreshed.Status)
	}

	// approve, execute, then confirm the terminal row is frozen
	approved, err := engine.ValidateAllocation(ctx, tc, refreshed.ID, models.ValidationActionApprove, "")
	if err != nil {
		t.Fatalf("ValidateAllocation: %v", err)
	}
	if approved.Status != models.AllocationStatusApproved {
		t.Fatalf("status %s after approve", approved.Status)
	}
	executed, err := engine.ExecuteAllocation(ctx, tc, approved.ID)
	if err != nil {
		t.Fatalf("ExecuteAllocation: %v", err)
	}
	if executed.Status != models.AllocationStatusExecuted || executed.ExecutedAt == nil {
		t.Fatalf("execute left status=%s executedAt=%v", executed.Status, executed.ExecutedAt)
	}
	if _, err := engine.CancelAllocation(ctx, tc, executed.ID, "trop tard"); err != utils.ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition cancelling executed row, got %v", err)
	}
}

func startMySQLContainer(t *testing.T) (containerName, hostPort string) {
	t.Helper()
	name := fmt.Sprintf("crou-test-mysql-%d", time.Now().UnixNano())
	out, err := dockerRun(
		"run", "-d", "--name", name,
		"-e", "MYSQL_ROOT_PASSWORD=testpw",
		"-e", "MYSQL_DATABASE=crou_test",
		"-p", "127.0.0.1:0:3306",
		"mysql:8.0",
		"--default-authentication-plugin=mysql_native_password",
	)
	if err != nil {
		t.Fatalf("start mysql container: %v\n%s", err, out)
	}
	port, err := dockerHostPort(name, "3306/tcp")
	if err != nil {
		t.Fatalf("mysql docker port: %v", err)
	}
	deadline := time.Now().Add(120 * time.Second)
	for time.Now().Before(deadline) {
		_, err := dockerRun("exec", name, "mysqladmin", "ping", "-h", "127.0.0.1", "-ptestpw", "--silent")
		if err == nil {
			return name, port
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("mysql did not become ready")
	return "", ""
}

func dockerHostPort(container, portProto string) (string, error) {
	out, err := dockerRun("port", container, portProto)
	if err != nil {
		return "", fmt.Errorf("docker port: %w: %s", err, out)
	}
	re := regexp.MustCompile(`:(\d+)`)
	m := re.FindStringSubmatch(out)
	if len(m) != 2 {
		return "", fmt.Errorf("unexpected docker port output: %q", out)
	}
	return m[1], nil
}

func dockerRmForce(container string) error {
	if strings.TrimSpace(container) == "" {
		return nil
	}
	_, err := dockerRun("rm", "-f", container)
	return err
}

func dockerRun(args ...string) (string, error) {
	cmd := exec.Command("docker", args...)
	b, err := cmd.CombinedOutput()
	return string(b), err
}
