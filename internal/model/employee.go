package model

// Employee 员工档案，删除时级联删除考勤记录
type Employee struct {
	BaseModel
	Names              string `gorm:"type:varchar(255);not null" json:"names"`
	Email              string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	EmployeeIdentifier string `gorm:"column:employee_identifier;type:varchar(64);uniqueIndex;not null" json:"employeeIdentifier"`
	PhoneNumber        string `gorm:"type:varchar(32);not null" json:"phoneNumber"`
}

// TableName 指定表名
func (Employee) TableName() string {
	return "employees"
}
