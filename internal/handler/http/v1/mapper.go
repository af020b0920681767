package v1

import "github.com/aksbond/Emergency-SOS/internal/models"

// ModelToUserResponse преобразует доменную модель в DTO для ответа
func ModelToUserResponse(model *models.User) *UserResponse {
	return &UserResponse{
		UserID:  model.UserID,
		Phone:   model.Phone,
		Name:    model.Name,
		Surname: model.Surname,
	}
}

// ModelsToUserResponses преобразует слайс моделей в слайс DTO
func ModelsToUserResponses(users []*models.User) []*UserResponse {
	responses := make([]*UserResponse, len(users))
	for i, user := range users {
		responses[i] = ModelToUserResponse(user)
	}
	return responses
}

// ModelToRequestResponse преобразует заявку в DTO.
// withName управляет включением имени: в ответе на отправку снимок
// имени не возвращается, в консоли оператора возвращается расшифрованным.
func ModelToRequestResponse(model *models.EmergencyRequest, withName bool) *RequestResponse {
	resp := &RequestResponse{
		RequestID:   model.RequestID,
		UserID:      model.UserID,
		Latitude:    model.Latitude,
		Longitude:   model.Longitude,
		TypeCode:    model.TypeCode,
		SubTypeCode: model.SubTypeCode,
		Details:     model.Details,
		Timestamp:   model.Timestamp,
	}
	if withName {
		resp.Name = model.Name
	}
	return resp
}

// ModelsToRequestResponses преобразует слайс заявок в слайс DTO
func ModelsToRequestResponses(requests []*models.EmergencyRequest, withName bool) []*RequestResponse {
	responses := make([]*RequestResponse, len(requests))
	for i, req := range requests {
		responses[i] = ModelToRequestResponse(req, withName)
	}
	return responses
}

// ModelsToTaxonomyResponse собирает полный каталог в DTO
func ModelsToTaxonomyResponse(types []*models.RequestType, subTypes []*models.RequestSubType) *TaxonomyResponse {
	resp := &TaxonomyResponse{
		Types:    make([]*TypeResponse, len(types)),
		SubTypes: make([]*SubTypeResponse, len(subTypes)),
	}
	for i, rt := range types {
		resp.Types[i] = &TypeResponse{TypeCode: rt.TypeCode, TypeName: rt.TypeName}
	}
	for i, st := range subTypes {
		resp.SubTypes[i] = &SubTypeResponse{
			SubTypeCode: st.SubTypeCode,
			SubTypeName: st.SubTypeName,
			TypeCode:    st.TypeCode,
		}
	}
	return resp
}
