package models

// AdminAction действие шлюза администрирования
type AdminAction string

const (
	ActionTest           AdminAction = "test"
	ActionCreateCategory AdminAction = "createCategory"
	ActionUpdateCategory AdminAction = "updateCategory"
	ActionDeleteCategory AdminAction = "deleteCategory"
	ActionCreateModel    AdminAction = "createModel"
	ActionUpdateModel    AdminAction = "updateModel"
	ActionDeleteModel    AdminAction = "deleteModel"
	ActionCreatePart     AdminAction = "createPart"
	ActionUpdatePart     AdminAction = "updatePart"
	ActionDeletePart     AdminAction = "deletePart"
)

// IsMutation сообщает, изменяет ли действие данные
func (a AdminAction) IsMutation() bool {
	switch a {
	case ActionCreateCategory, ActionUpdateCategory, ActionDeleteCategory,
		ActionCreateModel, ActionUpdateModel, ActionDeleteModel,
		ActionCreatePart, ActionUpdatePart, ActionDeletePart:
		return true
	}
	return false
}

// EntityType тип сущности каталога
type EntityType string

const (
	EntityCategory EntityType = "category"
	EntityModel    EntityType = "model"
	EntityPart     EntityType = "part"
)

// CategoryInput данные формы категории. Незаданные переводы приходят как null или "".
type CategoryInput struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	NameEN        string `json:"name_en"`
	NamePL        string `json:"name_pl"`
	Description   string `json:"description"`
	DescriptionEN string `json:"description_en"`
	DescriptionPL string `json:"description_pl"`
}

// Record преобразует ввод в запись таблицы
func (in CategoryInput) Record() *CategoryRecord {
	return &CategoryRecord{
		ID:          in.ID,
		Name:        LocalizedText{DE: in.Name, EN: in.NameEN, PL: in.NamePL},
		Description: LocalizedText{DE: in.Description, EN: in.DescriptionEN, PL: in.DescriptionPL},
	}
}

// ModelInput данные формы модели
type ModelInput struct {
	ID            string `json:"id"`
	CategoryID    string `json:"category_id"`
	Brand         string `json:"brand"`
	Designation   string `json:"designation"`
	Description   string `json:"description"`
	DescriptionEN string `json:"description_en"`
	DescriptionPL string `json:"description_pl"`
}

// Record преобразует ввод в запись таблицы
func (in ModelInput) Record() *ModelRecord {
	return &ModelRecord{
		ID:          in.ID,
		CategoryID:  in.CategoryID,
		Brand:       in.Brand,
		Designation: in.Designation,
		Description: LocalizedText{DE: in.Description, EN: in.DescriptionEN, PL: in.DescriptionPL},
	}
}

// PartInput данные формы запчасти
type PartInput struct {
	ID            string `json:"id"`
	ModelID       string `json:"model_id"`
	Name          string `json:"name"`
	NameEN        string `json:"name_en"`
	NamePL        string `json:"name_pl"`
	Description   string `json:"description"`
	DescriptionEN string `json:"description_en"`
	DescriptionPL string `json:"description_pl"`
	Image         string `json:"image"`
}

// Record преобразует ввод в запись таблицы
func (in PartInput) Record() *PartRecord {
	return &PartRecord{
		ID:          in.ID,
		ModelID:     in.ModelID,
		Name:        LocalizedText{DE: in.Name, EN: in.NameEN, PL: in.NamePL},
		Description: LocalizedText{DE: in.Description, EN: in.DescriptionEN, PL: in.DescriptionPL},
		Image:       in.Image,
	}
}

// EntityRef ссылка на удаляемую сущность
type EntityRef struct {
	ID string `json:"id"`
}
