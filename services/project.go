package services

import (
	"errors"
	"fmt"
	"strings"

	"miv-backend/models"

	"gorm.io/gorm"
)

// ProjectService предоставляет методы для работы с проектами и линиями
type ProjectService struct {
	db *gorm.DB
}

// NewProjectService создает новый сервис проектов
func NewProjectService(db *gorm.DB) *ProjectService {
	return &ProjectService{db: db}
}

// LineSuggestion — подсказка номера линии при вводе
type LineSuggestion struct {
	LineNo      string  `json:"line_no"`
	ProjectID   uint    `json:"project_id"`
	ProjectName string  `json:"project_name"`
	Ratio       float64 `json:"ratio"`
}

// UserActivityEntry — количество MIV, зарегистрированных пользователем
type UserActivityEntry struct {
	User  string `json:"user"`
	Count int64  `json:"count"`
}

// MaterialConsumptionEntry — суммарное потребление материала
type MaterialConsumptionEntry struct {
	Material  string  `json:"material"`
	TotalUsed float64 `json:"total_used"`
}

// StatusDistributionEntry — количество MIV в статусе
type StatusDistributionEntry struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// ProjectAnalytics — аналитика проекта для дашборда
type ProjectAnalytics struct {
	UserActivity        []UserActivityEntry        `json:"user_activity"`
	MaterialConsumption []MaterialConsumptionEntry `json:"material_consumption"`
	StatusDistribution  []StatusDistributionEntry  `json:"status_distribution"`
}

// ListProjects возвращает список всех проектов
func (s *ProjectService) ListProjects() ([]models.Project, error) {
	var projects []models.Project
	err := s.db.Order("name").Find(&projects).Error
	return projects, err
}

// GetProject возвращает проект по ID
func (s *ProjectService) GetProject(projectID uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "project", ID: projectID}
		}
		return nil, err
	}
	return &project, nil
}

// CreateProject создает проект с уникальным именем
func (s *ProjectService) CreateProject(name string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Field: "name", Message: "обязательное поле"}
	}

	var count int64
	if err := s.db.Model(&models.Project{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, &ValidationError{Field: "name",
			Message: fmt.Sprintf("проект '%s' уже существует", name)}
	}

	project := models.Project{Name: name}
	if err := s.db.Create(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// RenameProject переименовывает проект с проверкой уникальности имени
func (s *ProjectService) RenameProject(projectID uint, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return &ValidationError{Field: "name", Message: "обязательное поле"}
	}

	project, err := s.GetProject(projectID)
	if err != nil {
		return err
	}

	var count int64
	if err := s.db.Model(&models.Project{}).
		Where("name = ? AND id <> ?", newName, projectID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return &ValidationError{Field: "name",
			Message: fmt.Sprintf("проект '%s' уже существует", newName)}
	}

	project.Name = newName
	return s.db.Save(project).Error
}

// GetLinesForProject возвращает все уникальные номера линий проекта
func (s *ProjectService) GetLinesForProject(projectID uint) ([]string, error) {
	var lines []string
	err := s.db.Model(&models.MTOItem{}).
		Where("project_id = ?", projectID).
		Distinct("line_no").Order("line_no").Pluck("line_no", &lines).Error
	return lines, err
}

// SuggestLineNumbers ищет похожие номера линий по всем проектам.
// Совпадение подстроки получает бонус; возвращаются topN лучших.
func (s *ProjectService) SuggestLineNumbers(typed string, topN int) ([]LineSuggestion, error) {
	typed = strings.TrimSpace(typed)
	if len(typed) < 2 {
		return nil, nil
	}
	if topN <= 0 {
		topN = 7
	}

	type lineRow struct {
		LineNo      string
		ProjectID   uint
		ProjectName string
	}
	var rows []lineRow
	err := s.db.Model(&models.MTOItem{}).
		Joins("JOIN projects ON projects.id = mto_items.project_id").
		Distinct("mto_items.line_no, mto_items.project_id, projects.name AS project_name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	normInput := normalizeLineNo(typed)
	var suggestions []LineSuggestion
	for _, row := range rows {
		if row.LineNo == "" {
			continue
		}
		normLine := normalizeLineNo(row.LineNo)
		ratio := similarityRatio(normInput, normLine)
		if strings.Contains(normLine, normInput) {
			ratio += 0.2
		}
		if ratio > 0.4 {
			suggestions = append(suggestions, LineSuggestion{
				LineNo:      row.LineNo,
				ProjectID:   row.ProjectID,
				ProjectName: row.ProjectName,
				Ratio:       ratio,
			})
		}
	}

	// Сортировка по убыванию похожести
	for i := 0; i < len(suggestions); i++ {
		for j := i + 1; j < len(suggestions); j++ {
			if suggestions[j].Ratio > suggestions[i].Ratio {
				suggestions[i], suggestions[j] = suggestions[j], suggestions[i]
			}
		}
	}
	if len(suggestions) > topN {
		suggestions = suggestions[:topN]
	}

	return suggestions, nil
}

// GetProjectAnalytics собирает аналитику проекта: активность
// пользователей, самые потребляемые материалы и распределение статусов
func (s *ProjectService) GetProjectAnalytics(projectID uint) (*ProjectAnalytics, error) {
	analytics := ProjectAnalytics{}

	err := s.db.Model(&models.MIVRecord{}).
		Select("registered_by AS user, COUNT(id) AS count").
		Where("project_id = ?", projectID).
		Group("registered_by").Order("count DESC").
		Scan(&analytics.UserActivity).Error
	if err != nil {
		return nil, err
	}

	err = s.db.Model(&models.MTOConsumption{}).
		Joins("JOIN mto_items ON mto_items.id = mto_consumptions.mto_item_id").
		Select("mto_items.description AS material, SUM(mto_consumptions.used_qty) AS total_used").
		Where("mto_items.project_id = ?", projectID).
		Group("mto_items.description").Order("total_used DESC").Limit(10).
		Scan(&analytics.MaterialConsumption).Error
	if err != nil {
		return nil, err
	}

	err = s.db.Model(&models.MIVRecord{}).
		Select("status, COUNT(id) AS count").
		Where("project_id = ? AND status <> ''", projectID).
		Group("status").
		Scan(&analytics.StatusDistribution).Error
	if err != nil {
		return nil, err
	}

	return &analytics, nil
}

func normalizeLineNo(lineNo string) string {
	return strings.ToLower(strings.ReplaceAll(lineNo, " ", ""))
}

// similarityRatio считает похожесть двух строк как отношение удвоенной
// длины наибольшей общей подпоследовательности к сумме длин
func similarityRatio(a, b string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	lcs := prev[len(b)]
	return 2 * float64(lcs) / float64(len(a)+len(b))
}
