package model

type ResourceType string

const (
	ResourceDocument   ResourceType = "document"
	ResourceVideo      ResourceType = "video"
	ResourceAudio      ResourceType = "audio"
	ResourceImage      ResourceType = "image"
	ResourceLink       ResourceType = "link"
	ResourceAssessment ResourceType = "assessment"
)

// swagger:model Resource
type Resource struct {
	BaseModel
	Title          string       `gorm:"size:255;not null" json:"title"`
	Description    string       `gorm:"type:text" json:"description"`
	Type           ResourceType `gorm:"size:20;not null" json:"type"`
	FileURL        string       `gorm:"size:512" json:"fileUrl,omitempty"`
	FileSize       int64        `gorm:"default:0" json:"fileSize,omitempty"`
	MimeType       string       `gorm:"size:100" json:"mimeType,omitempty"`
	SubjectID      uint         `gorm:"index;type:bigint unsigned" json:"subjectId"`
	TopicID        *uint        `gorm:"index;type:bigint unsigned" json:"topicId,omitempty"`
	SubtopicID     *uint        `gorm:"index;type:bigint unsigned" json:"subtopicId,omitempty"`
	TargetAudience string       `gorm:"size:100;default:'student'" json:"targetAudience"` // comma-separated: student,teacher,parent
	Year           int          `gorm:"index;not null" json:"year"`
	Quarter        string       `gorm:"size:2;index;default:'Q1'" json:"quarter"`
	IsPublished    bool         `gorm:"default:false" json:"isPublished"`
	CreatorID      uint         `gorm:"index;type:bigint unsigned" json:"creatorId"`
	// Set when Type is "assessment".
	AssessmentID *uint `gorm:"index;type:bigint unsigned" json:"assessmentId,omitempty"`
}

func (Resource) TableName() string {
	return "resources"
}

func ValidResourceType(t ResourceType) bool {
	switch t {
	case ResourceDocument, ResourceVideo, ResourceAudio, ResourceImage, ResourceLink, ResourceAssessment:
		return true
	}
	return false
}
