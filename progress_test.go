package main

import (
	"testing"

	"miv-backend/models"
	"miv-backend/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLineProgressCombinesDirectAndSpool проверяет сквозной сценарий:
// потребность в трубе закрывается прямым списанием и складским куском,
// прогресс учитывает оба журнала
func TestLineProgressCombinesDirectAndSpool(t *testing.T) {
	db := setupTestDB()
	mivService, progressService, _, _ := newTestServices(db)

	project := createTestProject(db, "Test Project")
	item := createTestMTOItem(db, project.ID, "L-101", "PIPE", "P-6IN-SCH40", floatPtr(6), 100, 1)

	spool := createTestSpool(db, "SP-0001")
	spoolItem := createTestSpoolItem(db, spool.ID, "PIPE", floatPtr(6), 50, 0)

	_, err := mivService.RegisterMIV(project.ID,
		services.MIVForm{LineNo: "L-101", MIVTag: "MIV-001", RegisteredBy: "tester"},
		[]services.DirectConsumptionInput{{MTOItemID: item.ID, UsedQty: 20}},
		[]services.SpoolWithdrawalInput{{SpoolItemID: spoolItem.ID, UsedQty: 30}},
	)
	require.NoError(t, err)

	rows, err := progressService.GetLineProgress(project.ID, "L-101")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.InDelta(t, 100, rows[0].TotalQty, 0.001)
	assert.InDelta(t, 50, rows[0].UsedQty, 0.001)
	assert.InDelta(t, 50, rows[0].RemainingQty, 0.001)

	// Складская позиция уменьшилась на длину списания
	var reloaded models.SpoolItem
	db.First(&reloaded, spoolItem.ID)
	assert.InDelta(t, 20, reloaded.Length, 0.001)
}

// TestRebuildIdempotence проверяет, что повторные пересборки дают
// одинаковые значения прогресса
func TestRebuildIdempotence(t *testing.T) {
	db := setupTestDB()
	mivService, progressService, _, _ := newTestServices(db)

	project := createTestProject(db, "Test Project")
	item := createTestMTOItem(db, project.ID, "L-101", "ELBOW", "ELB-90-6IN", floatPtr(6), 0, 10)

	_, err := mivService.RegisterMIV(project.ID,
		services.MIVForm{LineNo: "L-101", MIVTag: "MIV-001"},
		[]services.DirectConsumptionInput{{MTOItemID: item.ID, UsedQty: 4}},
		nil,
	)
	require.NoError(t, err)

	snapshot := func() []models.MTOProgress {
		rows, err := progressService.GetLineProgress(project.ID, "L-101")
		require.NoError(t, err)
		return rows
	}

	first := snapshot()
	require.NoError(t, progressService.RebuildLineProgress(project.ID, "L-101"))
	require.NoError(t, progressService.RebuildLineProgress(project.ID, "L-101"))
	second := snapshot()

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].MTOItemID, second[i].MTOItemID)
		assert.InDelta(t, first[i].TotalQty, second[i].TotalQty, 0.0001)
		assert.InDelta(t, first[i].UsedQty, second[i].UsedQty, 0.0001)
		assert.InDelta(t, first[i].RemainingQty, second[i].RemainingQty, 0.0001)
	}
}

// TestLazyRebuildOnFirstRead проверяет ленивую пересборку: чтение линии
// без строк прогресса само их создает
func TestLazyRebuildOnFirstRead(t *testing.T) {
	db := setupTestDB()
	_, progressService, _, _ := newTestServices(db)

	project := createTestProject(db, "Test Project")
	createTestMTOItem(db, project.ID, "L-200", "PIPE", "P-4IN", floatPtr(4), 60, 1)
	createTestMTOItem(db, project.ID, "L-200", "FLANGE", "FLG-4IN", floatPtr(4), 0, 6)

	var count int64
	db.Model(&models.MTOProgress{}).Count(&count)
	require.Equal(t, int64(0), count)

	rows, err := progressService.GetLineProgress(project.ID, "L-200")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	// Труба учитывается по длине, фланец — по количеству
	for _, row := range rows {
		switch row.ItemCode {
		case "P-4IN":
			assert.InDelta(t, 60, row.TotalQty, 0.001)
		case "FLG-4IN":
			assert.InDelta(t, 6, row.TotalQty, 0.001)
		}
		assert.InDelta(t, 0, row.UsedQty, 0.001)
	}
}

// TestAliasAttribution проверяет отнесение складских списаний через
// таблицу синонимов: списание позиции FLG засчитывается потребности
// FLANGE той же линии, а позиция с другим диаметром не учитывается
func TestAliasAttribution(t *testing.T) {
	db := setupTestDB()
	mivService, progressService, _, _ := newTestServices(db)

	project := createTestProject(db, "Test Project")
	item := createTestMTOItem(db, project.ID, "L-300", "FLANGE", "FLG-6IN-150", floatPtr(6), 0, 8)

	spool := createTestSpool(db, "SP-0001")
	matching := createTestSpoolItem(db, spool.ID, "FLG", floatPtr(6), 0, 10)
	wrongBore := createTestSpoolItem(db, spool.ID, "FLG", floatPtr(8), 0, 10)

	_, err := mivService.RegisterMIV(project.ID,
		services.MIVForm{LineNo: "L-300", MIVTag: "MIV-001"},
		nil,
		[]services.SpoolWithdrawalInput{
			{SpoolItemID: matching.ID, UsedQty: 3},
			{SpoolItemID: wrongBore.ID, UsedQty: 2},
		},
	)
	require.NoError(t, err)

	rows, err := progressService.GetLineProgress(project.ID, "L-300")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, item.ID, rows[0].MTOItemID)

	// Засчитаны только 3 шт с совпадающим диаметром
	assert.InDelta(t, 3, rows[0].UsedQty, 0.001)
	assert.InDelta(t, 5, rows[0].RemainingQty, 0.001)
}

// TestLedgerProgressEquality сверяет таблицу прогресса с прямым
// суммированием журналов
func TestLedgerProgressEquality(t *testing.T) {
	db := setupTestDB()
	mivService, progressService, _, _ := newTestServices(db)

	project := createTestProject(db, "Test Project")
	item := createTestMTOItem(db, project.ID, "L-400", "TEE", "TEE-6IN", floatPtr(6), 0, 12)

	for _, reg := range []struct {
		tag string
		qty float64
	}{{"MIV-001", 2}, {"MIV-002", 3.5}, {"MIV-003", 1.25}} {
		_, err := mivService.RegisterMIV(project.ID,
			services.MIVForm{LineNo: "L-400", MIVTag: reg.tag},
			[]services.DirectConsumptionInput{{MTOItemID: item.ID, UsedQty: reg.qty}},
			nil,
		)
		require.NoError(t, err)
	}

	var ledgerSum float64
	db.Model(&models.MTOConsumption{}).Where("mto_item_id = ?", item.ID).
		Select("COALESCE(SUM(used_qty), 0)").Scan(&ledgerSum)

	rows, err := progressService.GetLineProgress(project.ID, "L-400")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.InDelta(t, ledgerSum, rows[0].UsedQty, 0.0001)
	assert.InDelta(t, 12-ledgerSum, rows[0].RemainingQty, 0.0001)
}

// TestLineSummary проверяет сводку готовности линии
func TestLineSummary(t *testing.T) {
	db := setupTestDB()
	mivService, progressService, _, _ := newTestServices(db)

	project := createTestProject(db, "Test Project")
	closed := createTestMTOItem(db, project.ID, "L-500", "GASKET", "GSK-6IN", floatPtr(6), 0, 4)
	createTestMTOItem(db, project.ID, "L-500", "BOLT", "BLT-M20", nil, 0, 16)

	_, err := mivService.RegisterMIV(project.ID,
		services.MIVForm{LineNo: "L-500", MIVTag: "MIV-001"},
		[]services.DirectConsumptionInput{{MTOItemID: closed.ID, UsedQty: 4}},
		nil,
	)
	require.NoError(t, err)

	summary, err := progressService.GetLineSummary(project.ID, "L-500")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.ItemsTotal)
	assert.Equal(t, 1, summary.ItemsClosed)
	assert.False(t, summary.IsComplete)
	assert.InDelta(t, 20, summary.Percentage, 0.001)
}
