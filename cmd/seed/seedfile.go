package main

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/localmarkets/marketplace/internal/domain"
	"github.com/localmarkets/marketplace/internal/service"
)

const dateLayout = "2006-01-02"

type seedFile struct {
	Markets []seedMarket `yaml:"markets"`
}

type seedMarket struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Location    string       `yaml:"location"`
	Image       string       `yaml:"image"`
	Images      []string     `yaml:"images"`
	PrevDate    string       `yaml:"prev_date"`
	NextDate    string       `yaml:"next_date"`
	Vendors     []seedVendor `yaml:"vendors"`
}

type seedVendor struct {
	Name     string        `yaml:"name"`
	Phone    string        `yaml:"phone"`
	Password string        `yaml:"password"`
	Email    string        `yaml:"email"`
	Website  string        `yaml:"website"`
	Goods    []string      `yaml:"goods"`
	Products []seedProduct `yaml:"products"`
}

type seedProduct struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Price       float64  `yaml:"price"`
	Image       string   `yaml:"image"`
	Images      []string `yaml:"images"`
	Tags        []string `yaml:"tags"`
}

// parseSeedFile decodes r and converts it to seeder input. Unknown fields are
// rejected so typos surface instead of silently seeding empty values.
func parseSeedFile(r io.Reader) ([]service.SeedMarket, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f seedFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("dec.Decode -> %w", err)
	}

	out := make([]service.SeedMarket, 0, len(f.Markets))
	for _, m := range f.Markets {
		sm, err := m.toSeed()
		if err != nil {
			return nil, fmt.Errorf("market %q -> %w", m.Name, err)
		}
		out = append(out, sm)
	}

	return out, nil
}

func (m seedMarket) toSeed() (service.SeedMarket, error) {
	if m.Name == "" {
		return service.SeedMarket{}, fmt.Errorf("name is required")
	}

	prev, err := parseDate(m.PrevDate)
	if err != nil {
		return service.SeedMarket{}, fmt.Errorf("prev_date -> %w", err)
	}
	next, err := parseDate(m.NextDate)
	if err != nil {
		return service.SeedMarket{}, fmt.Errorf("next_date -> %w", err)
	}

	sm := service.SeedMarket{
		Market: domain.Market{
			Name:        m.Name,
			Description: m.Description,
			Location:    m.Location,
			Image:       m.Image,
			Images:      m.Images,
			PrevDate:    prev,
			NextDate:    next,
		},
	}

	for _, v := range m.Vendors {
		sv, err := v.toSeed()
		if err != nil {
			return service.SeedMarket{}, fmt.Errorf("vendor %q -> %w", v.Phone, err)
		}
		sm.Vendors = append(sm.Vendors, sv)
	}

	return sm, nil
}

func (v seedVendor) toSeed() (service.SeedVendor, error) {
	if v.Phone == "" || v.Password == "" {
		return service.SeedVendor{}, fmt.Errorf("phone and password are required")
	}

	sv := service.SeedVendor{
		Registration: domain.Registration{
			Phone:    v.Phone,
			Password: v.Password,
			Name:     v.Name,
			Email:    v.Email,
			Website:  v.Website,
		},
		Goods: v.Goods,
	}

	for _, p := range v.Products {
		tags := make([]domain.Tag, 0, len(p.Tags))
		for _, raw := range p.Tags {
			tag, ok := domain.ParseTag(raw)
			if !ok {
				return service.SeedVendor{}, fmt.Errorf("product %q: unknown tag %q", p.Name, raw)
			}
			tags = append(tags, tag)
		}

		sv.Products = append(sv.Products, domain.Product{
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Image:       p.Image,
			Images:      p.Images,
			Tags:        tags,
		})
	}

	return sv, nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}

	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}

	return &t, nil
}
