package domain

// Book kinds and publishers.
const (
	BookKindKindle = "KINDLE"
	BookKindPrint  = "PRINT"

	PublisherFoo = "FOO_PUBLISHER"
	PublisherBar = "BAR_PUBLISHER"
)

// Book is a catalog entry identified by its ISBN.
type Book struct {
	Metadata  `bson:",inline"`
	BookTitle string   `json:"title" bson:"title" validate:"required,title"`
	Rating    int      `json:"rating" bson:"rating" validate:"gte=0,lte=5"`
	Kind      string   `json:"kind,omitempty" bson:"kind,omitempty" validate:"omitempty,oneof=KINDLE PRINT"`
	Publisher string   `json:"publisher" bson:"publisher" validate:"required,oneof=FOO_PUBLISHER BAR_PUBLISHER"`
	Price     *float64 `json:"price" bson:"price" validate:"required,gte=0"`
	Discount  float64  `json:"discount" bson:"discount" validate:"gte=0,lte=1"`
	Available bool     `json:"available" bson:"available"`
	Date      string   `json:"date,omitempty" bson:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ISBN      string   `json:"isbn" bson:"isbn" validate:"required,isbn"`
	Homepage  string   `json:"homepage,omitempty" bson:"homepage,omitempty" validate:"omitempty,url"`
	Keywords  []string `json:"keywords,omitempty" bson:"keywords,omitempty"`
	Authors   []string `json:"authors,omitempty" bson:"authors,omitempty"`
}

func (b *Book) Title() string           { return b.BookTitle }
func (b *Book) BusinessKey() string     { return b.ISBN }
func (b *Book) SetBusinessKey(v string) { b.ISBN = v }

// BookSchema describes books to the catalog engine.
var BookSchema = Schema[*Book]{
	Kind:             "book",
	Collection:       "books",
	TitleField:       "title",
	BusinessKeyField: "isbn",
	BusinessKeyJSON:  "isbn",
	Mutable: []string{
		"title", "rating", "kind", "publisher", "price", "discount",
		"available", "date", "homepage", "keywords", "authors",
	},
	New: func() *Book { return &Book{} },
}
