package company

type UpdateCompanyDTO struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	CNPJ    string `json:"cnpj"`
	Address string `json:"address"`
	Domain  string `json:"domain"`
	Color   string `json:"color" validate:"omitempty,hexcolor" errcode:"invalid-body"`
	Image   string `json:"image"`
}

type CompanyResponse struct {
	Company *Company `json:"company"`
}

type DetailsResponse struct {
	Company *Details `json:"company"`
}

type UploadResponse struct {
	Hash string `json:"hash"`
}
