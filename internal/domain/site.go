package domain

// Site is the tenant boundary, every query is scoped by its id.
type Site struct {
	Id    SiteId `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title"`
	Host  string `json:"host,omitempty"`
}

type Category struct {
	Id        CategoryId `json:"id"`
	SiteId    SiteId     `json:"site_id"`
	Name      string     `json:"name"`
	SortOrder int        `json:"sort_order"`
}

type Forum struct {
	Id          ForumId    `json:"id"`
	CategoryId  CategoryId `json:"category_id"`
	SiteId      SiteId     `json:"site_id"`
	Name        string     `json:"name"`
	Slug        Slug       `json:"slug"`
	Description string     `json:"description"`
	SortOrder   int        `json:"sort_order"`
}
