package employee

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=employee approver"`
}

type EmployeeResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}
