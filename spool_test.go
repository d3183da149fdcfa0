package main

import (
	"testing"

	"miv-backend/models"
	"miv-backend/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGetCompatibleInventory проверяет подбор совместимых складских
// позиций: синонимы типа учитываются, чужой диаметр и нулевой остаток —
// нет
func TestGetCompatibleInventory(t *testing.T) {
	db := setupTestDB()
	_, _, spoolService, _ := newTestServices(db)

	spool := createTestSpool(db, "SP-0001")
	matching := createTestSpoolItem(db, spool.ID, "FLG", floatPtr(6), 0, 10)
	createTestSpoolItem(db, spool.ID, "FLG", floatPtr(8), 0, 10)
	createTestSpoolItem(db, spool.ID, "FLANGE", floatPtr(6), 0, 0)
	createTestSpoolItem(db, spool.ID, "ELBOW", floatPtr(6), 0, 5)

	items, err := spoolService.GetCompatibleInventory("FLANGE", floatPtr(6))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, matching.ID, items[0].ID)
	assert.Equal(t, "SP-0001", items[0].Spool.SpoolID)
}

// TestGetCompatibleInventoryNoBore проверяет, что без диаметра
// ограничение отсутствует
func TestGetCompatibleInventoryNoBore(t *testing.T) {
	db := setupTestDB()
	_, _, spoolService, _ := newTestServices(db)

	spool := createTestSpool(db, "SP-0001")
	createTestSpoolItem(db, spool.ID, "GASKET", floatPtr(6), 0, 4)
	createTestSpoolItem(db, spool.ID, "GSK", floatPtr(8), 0, 2)
	createTestSpoolItem(db, spool.ID, "GSK", nil, 0, 1)

	items, err := spoolService.GetCompatibleInventory("GSK", nil)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

// TestCreateAndGetSpool проверяет создание катушки с позициями
func TestCreateAndGetSpool(t *testing.T) {
	db := setupTestDB()
	_, _, spoolService, _ := newTestServices(db)

	spool, err := spoolService.CreateSpool(
		services.SpoolInput{SpoolID: "sp-0007", Location: "YARD-2"},
		[]services.SpoolItemInput{
			{ComponentType: "pipe", P1Bore: floatPtr(6), Length: 40},
			{ComponentType: "flg", P1Bore: floatPtr(6), QtyAvailable: 4},
		},
	)
	require.NoError(t, err)
	assert.Equal(t, "SP-0007", spool.SpoolID)
	require.Len(t, spool.Items, 2)

	// Тип компонента нормализуется при записи
	assert.Equal(t, "PIPE", spool.Items[0].ComponentType)
	assert.Equal(t, "FLG", spool.Items[1].ComponentType)

	// Повторное создание с тем же тегом отклоняется
	_, err = spoolService.CreateSpool(services.SpoolInput{SpoolID: "SP-0007"}, nil)
	var validationErr *services.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

// TestGetSpoolNotFound проверяет ошибку для несуществующего тега
func TestGetSpoolNotFound(t *testing.T) {
	db := setupTestDB()
	_, _, spoolService, _ := newTestServices(db)

	_, err := spoolService.GetSpool("SP-9999")
	var notFoundErr *services.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "SP-9999", notFoundErr.Tag)
}

// TestGenerateNextSpoolID проверяет генерацию следующего свободного тега
func TestGenerateNextSpoolID(t *testing.T) {
	db := setupTestDB()
	_, _, spoolService, _ := newTestServices(db)

	next, err := spoolService.GenerateNextSpoolID()
	require.NoError(t, err)
	assert.Equal(t, "SP-0001", next)

	createTestSpool(db, "SP-0003")
	createTestSpool(db, "SP-0011")

	next, err = spoolService.GenerateNextSpoolID()
	require.NoError(t, err)
	assert.Equal(t, "SP-0012", next)
}

// TestUpdateSpoolRejectedAfterConsumption проверяет запрет замены
// позиций катушки, по которой уже есть списания
func TestUpdateSpoolRejectedAfterConsumption(t *testing.T) {
	db := setupTestDB()
	mivService, _, spoolService, _ := newTestServices(db)

	project := createTestProject(db, "Test Project")
	createTestMTOItem(db, project.ID, "L-101", "PIPE", "P-6IN", floatPtr(6), 100, 1)

	spool := createTestSpool(db, "SP-0001")
	spoolItem := createTestSpoolItem(db, spool.ID, "PIPE", floatPtr(6), 50, 0)

	_, err := mivService.RegisterMIV(project.ID,
		services.MIVForm{LineNo: "L-101", MIVTag: "MIV-001"},
		nil,
		[]services.SpoolWithdrawalInput{{SpoolItemID: spoolItem.ID, UsedQty: 10}},
	)
	require.NoError(t, err)

	_, err = spoolService.UpdateSpool("SP-0001",
		services.SpoolInput{SpoolID: "SP-0001", Location: "YARD-3"},
		[]services.SpoolItemInput{{ComponentType: "PIPE", P1Bore: floatPtr(6), Length: 100}},
	)
	var validationErr *services.ValidationError
	require.ErrorAs(t, err, &validationErr)

	// Позиция осталась нетронутой
	var reloaded models.SpoolItem
	require.NoError(t, db.First(&reloaded, spoolItem.ID).Error)
	assert.InDelta(t, 40, reloaded.Length, 0.001)
}

// TestUpdateSpoolReplacesItems проверяет замену позиций катушки без
// списаний
func TestUpdateSpoolReplacesItems(t *testing.T) {
	db := setupTestDB()
	_, _, spoolService, _ := newTestServices(db)

	spool := createTestSpool(db, "SP-0001")
	createTestSpoolItem(db, spool.ID, "PIPE", floatPtr(6), 50, 0)

	updated, err := spoolService.UpdateSpool("SP-0001",
		services.SpoolInput{SpoolID: "SP-0001", Location: "YARD-3"},
		[]services.SpoolItemInput{
			{ComponentType: "ELBOW", P1Bore: floatPtr(4), QtyAvailable: 6},
		},
	)
	require.NoError(t, err)
	assert.Equal(t, "YARD-3", updated.Location)
	require.Len(t, updated.Items, 1)
	assert.Equal(t, "ELBOW", updated.Items[0].ComponentType)
}
