package backend

import (
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/pos/internal/domain/models"
)

type loginResponse struct {
	Data    *loginData `json:"data"`
	Message string     `json:"message"`
}

type loginData struct {
	Token string `json:"token"`
	User  struct {
		ID        int    `json:"id"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Email     string `json:"email"`
	} `json:"user"`
	Permissions []string `json:"permissions"`
}

func (d *loginData) toModel() *models.Session {
	return &models.Session{
		Token: d.Token,
		User: models.User{
			ID:        d.User.ID,
			FirstName: d.User.FirstName,
			LastName:  d.User.LastName,
			Email:     d.User.Email,
		},
		Permissions: d.Permissions,
	}
}

type productResponse struct {
	Data []productResource `json:"data"`
}

type productResource struct {
	Type       string `json:"type"`
	ID         int    `json:"id"`
	Attributes struct {
		Name         string          `json:"name"`
		Code         string          `json:"code"`
		ProductPrice decimal.Decimal `json:"product_price"`
		CategoryName string          `json:"product_category_name"`
		BrandName    string          `json:"brand_name"`
		Images       []string        `json:"images"`
		SaleUnitName *struct {
			Name string `json:"name"`
		} `json:"sale_unit_name"`
		Stock *struct {
			Quantity int `json:"quantity"`
		} `json:"stock"`
	} `json:"attributes"`
}

func (r productResource) toModel() models.Product {
	attrs := r.Attributes

	price := attrs.ProductPrice
	if price.IsNegative() {
		price = decimal.Zero
	}

	p := models.Product{
		ID:        r.ID,
		Name:      attrs.Name,
		Code:      attrs.Code,
		Price:     price,
		Category:  attrs.CategoryName,
		Brand:     attrs.BrandName,
		ImageURLs: attrs.Images,
	}
	if attrs.SaleUnitName != nil {
		p.SaleUnit = attrs.SaleUnitName.Name
	}
	if attrs.Stock != nil {
		qty := attrs.Stock.Quantity
		p.Stock = &qty
	}
	return p
}

type customerResponse struct {
	Data []customerResource `json:"data"`
}

type customerResource struct {
	Type       string `json:"type"`
	ID         int    `json:"id"`
	Attributes struct {
		Name           string `json:"name"`
		Email          string `json:"email"`
		Phone          string `json:"phone"`
		Country        string `json:"country"`
		City           string `json:"city"`
		Address        string `json:"address"`
		DocumentNumber string `json:"document_number"`
		DocumentTypeID int    `json:"document_type_id"`
	} `json:"attributes"`
}

func (r customerResource) toModel() models.Customer {
	attrs := r.Attributes
	return models.Customer{
		ID:             r.ID,
		Name:           attrs.Name,
		Email:          attrs.Email,
		Phone:          attrs.Phone,
		Country:        attrs.Country,
		City:           attrs.City,
		Address:        attrs.Address,
		DocumentNumber: attrs.DocumentNumber,
		DocumentTypeID: attrs.DocumentTypeID,
	}
}

type quotationResponse struct {
	Data struct {
		Type       string `json:"type"`
		ID         int    `json:"id"`
		Attributes struct {
			ReferenceCode string  `json:"reference_code"`
			GrandTotal    float64 `json:"grand_total"`
			Status        string  `json:"status"`
		} `json:"attributes"`
	} `json:"data"`
}
