package main

import (
	"testing"

	"miv-backend/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCreateProjectUniqueName проверяет уникальность имени проекта
func TestCreateProjectUniqueName(t *testing.T) {
	db := setupTestDB()
	projectService := services.NewProjectService(db)

	project, err := projectService.CreateProject("  Refinery Unit 3  ")
	require.NoError(t, err)
	assert.Equal(t, "Refinery Unit 3", project.Name)

	_, err = projectService.CreateProject("Refinery Unit 3")
	var validationErr *services.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

// TestRenameProject проверяет переименование с проверкой уникальности
func TestRenameProject(t *testing.T) {
	db := setupTestDB()
	projectService := services.NewProjectService(db)

	first, err := projectService.CreateProject("Alpha")
	require.NoError(t, err)
	_, err = projectService.CreateProject("Beta")
	require.NoError(t, err)

	require.NoError(t, projectService.RenameProject(first.ID, "Gamma"))
	reloaded, err := projectService.GetProject(first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gamma", reloaded.Name)

	err = projectService.RenameProject(first.ID, "Beta")
	var validationErr *services.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

// TestGetLinesForProject проверяет список уникальных номеров линий
func TestGetLinesForProject(t *testing.T) {
	db := setupTestDB()
	projectService := services.NewProjectService(db)

	project := createTestProject(db, "Test Project")
	createTestMTOItem(db, project.ID, "L-101", "PIPE", "P-6IN", floatPtr(6), 10, 1)
	createTestMTOItem(db, project.ID, "L-101", "FLANGE", "FLG-6IN", floatPtr(6), 0, 2)
	createTestMTOItem(db, project.ID, "L-200", "PIPE", "P-4IN", floatPtr(4), 20, 1)

	lines, err := projectService.GetLinesForProject(project.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"L-101", "L-200"}, lines)
}

// TestSuggestLineNumbers проверяет подсказки номеров линий: точное
// вхождение получает бонус и ранжируется выше
func TestSuggestLineNumbers(t *testing.T) {
	db := setupTestDB()
	projectService := services.NewProjectService(db)

	project := createTestProject(db, "Test Project")
	createTestMTOItem(db, project.ID, "100-PL-001", "PIPE", "P-6IN", floatPtr(6), 10, 1)
	createTestMTOItem(db, project.ID, "100-PL-002", "PIPE", "P-6IN", floatPtr(6), 10, 1)
	createTestMTOItem(db, project.ID, "200-CW-001", "PIPE", "P-4IN", floatPtr(4), 10, 1)

	suggestions, err := projectService.SuggestLineNumbers("100-PL", 7)
	require.NoError(t, err)
	require.NotEmpty(t, suggestions)

	for _, s := range suggestions {
		assert.Contains(t, []string{"100-PL-001", "100-PL-002"}, s.LineNo)
		assert.Greater(t, s.Ratio, 0.4)
	}

	// Ранжирование по убыванию похожести
	for i := 1; i < len(suggestions); i++ {
		assert.GreaterOrEqual(t, suggestions[i-1].Ratio, suggestions[i].Ratio)
	}
}

// TestSuggestLineNumbersShortInput проверяет, что слишком короткий ввод
// не дает подсказок
func TestSuggestLineNumbersShortInput(t *testing.T) {
	db := setupTestDB()
	projectService := services.NewProjectService(db)

	project := createTestProject(db, "Test Project")
	createTestMTOItem(db, project.ID, "L-101", "PIPE", "P-6IN", floatPtr(6), 10, 1)

	suggestions, err := projectService.SuggestLineNumbers("L", 7)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

// TestProjectAnalytics проверяет сводную аналитику проекта
func TestProjectAnalytics(t *testing.T) {
	db := setupTestDB()
	mivService, _, _, _ := newTestServices(db)
	projectService := services.NewProjectService(db)

	project := createTestProject(db, "Test Project")
	item := createTestMTOItem(db, project.ID, "L-101", "ELBOW", "ELB-6IN", floatPtr(6), 0, 20)

	registrations := []struct {
		tag    string
		user   string
		status string
		qty    float64
	}{
		{"MIV-001", "alice", "issued", 2},
		{"MIV-002", "alice", "issued", 3},
		{"MIV-003", "bob", "draft", 1},
	}
	for _, reg := range registrations {
		_, err := mivService.RegisterMIV(project.ID,
			services.MIVForm{LineNo: "L-101", MIVTag: reg.tag, Status: reg.status, RegisteredBy: reg.user},
			[]services.DirectConsumptionInput{{MTOItemID: item.ID, UsedQty: reg.qty}},
			nil,
		)
		require.NoError(t, err)
	}

	analytics, err := projectService.GetProjectAnalytics(project.ID)
	require.NoError(t, err)

	require.Len(t, analytics.UserActivity, 2)
	assert.Equal(t, "alice", analytics.UserActivity[0].User)
	assert.Equal(t, int64(2), analytics.UserActivity[0].Count)

	require.Len(t, analytics.MaterialConsumption, 1)
	assert.InDelta(t, 6, analytics.MaterialConsumption[0].TotalUsed, 0.001)

	require.Len(t, analytics.StatusDistribution, 2)
}
