package domain

// Film kinds and production companies.
const (
	FilmKind3D = "THREE_D"
	FilmKind2D = "TWO_D"

	ProductionConstantin = "CONSTANTIN_FILM"
	ProductionBig        = "BIG_PRODUCTION"
)

// Film is a catalog entry identified by its production number.
type Film struct {
	Metadata         `bson:",inline"`
	FilmTitle        string   `json:"title" bson:"title" validate:"required,title"`
	Rating           int      `json:"rating" bson:"rating" validate:"gte=0,lte=5"`
	Kind             string   `json:"kind,omitempty" bson:"kind,omitempty" validate:"omitempty,oneof=THREE_D TWO_D"`
	Production       string   `json:"production" bson:"production" validate:"required,oneof=CONSTANTIN_FILM BIG_PRODUCTION"`
	Price            *float64 `json:"price" bson:"price" validate:"required,gte=0"`
	Discount         float64  `json:"discount" bson:"discount" validate:"gte=0,lte=1"`
	Available        bool     `json:"available" bson:"available"`
	Date             string   `json:"date,omitempty" bson:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ProductionNumber string   `json:"productionNumber" bson:"production_number" validate:"required,prodnr"`
	Homepage         string   `json:"homepage,omitempty" bson:"homepage,omitempty" validate:"omitempty,url"`
	Keywords         []string `json:"keywords,omitempty" bson:"keywords,omitempty"`
	Directors        []string `json:"directors,omitempty" bson:"directors,omitempty"`
}

func (f *Film) Title() string           { return f.FilmTitle }
func (f *Film) BusinessKey() string     { return f.ProductionNumber }
func (f *Film) SetBusinessKey(v string) { f.ProductionNumber = v }

// FilmSchema describes films to the catalog engine.
var FilmSchema = Schema[*Film]{
	Kind:             "film",
	Collection:       "films",
	TitleField:       "title",
	BusinessKeyField: "production_number",
	BusinessKeyJSON:  "productionNumber",
	Mutable: []string{
		"title", "rating", "kind", "production", "price", "discount",
		"available", "date", "homepage", "keywords", "directors",
	},
	New: func() *Film { return &Film{} },
}
