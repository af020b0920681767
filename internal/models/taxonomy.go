package models

// Коды типов заявок. Каталог фиксированный и заливается миграцией.
const (
	TypeAttack   = "ATTACK"
	TypeInjury   = "INJURY"
	TypeMedical  = "MEDICAL"
	TypeHelpline = "HELPLINE"
)

// RequestType - тип экстренной заявки
type RequestType struct {
	TypeCode string `json:"type_code"`
	TypeName string `json:"type_name"`
}

// RequestSubType - подтип заявки, принадлежит ровно одному типу.
// Подтипы есть только у ATTACK и INJURY.
type RequestSubType struct {
	SubTypeCode string `json:"subtype_code"`
	SubTypeName string `json:"subtype_name"`
	TypeCode    string `json:"type_code"`
}

// CarriesSubType сообщает, допускает ли тип подтип и детали
func CarriesSubType(typeCode string) bool {
	return typeCode == TypeAttack || typeCode == TypeInjury
}
