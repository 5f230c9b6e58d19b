package model

// swagger:model Subject
type Subject struct {
	BaseModel
	Name        string  `gorm:"size:255;not null" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Year        int     `gorm:"index;not null" json:"year"`
	Topics      []Topic `gorm:"foreignKey:SubjectID" json:"topics,omitempty"`
}

func (Subject) TableName() string {
	return "subjects"
}

// Topic is a teaching unit within a subject.
// swagger:model Topic
type Topic struct {
	BaseModel
	SubjectID   uint       `gorm:"index;type:bigint unsigned" json:"subjectId"`
	Name        string     `gorm:"size:255;not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	Order       int        `gorm:"default:0" json:"order"`
	Subtopics   []Subtopic `gorm:"foreignKey:TopicID" json:"subtopics,omitempty"`
}

func (Topic) TableName() string {
	return "topics"
}

// swagger:model Subtopic
type Subtopic struct {
	BaseModel
	TopicID     uint   `gorm:"index;type:bigint unsigned" json:"topicId"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Order       int    `gorm:"default:0" json:"order"`
}

func (Subtopic) TableName() string {
	return "subtopics"
}
