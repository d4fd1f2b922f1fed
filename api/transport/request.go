package transport

import "github.com/valyala/fasthttp"

// Form inputs are application/x-www-form-urlencoded; each operation has
// an explicit schema parsed here rather than ad hoc field peeks in
// handlers.

type RegisterForm struct {
	Username string
	Email    string
	Password string
}

func ParseRegisterForm(args *fasthttp.Args) RegisterForm {
	return RegisterForm{
		Username: string(args.Peek("username")),
		Email:    string(args.Peek("email")),
		Password: string(args.Peek("password")),
	}
}

type LoginForm struct {
	Username string
	Password string
	Next     string
}

func ParseLoginForm(args *fasthttp.Args) LoginForm {
	return LoginForm{
		Username: string(args.Peek("username")),
		Password: string(args.Peek("password")),
		Next:     string(args.Peek("next")),
	}
}

type TaskForm struct {
	Content string
	DueDate string
}

func ParseTaskForm(args *fasthttp.Args) TaskForm {
	return TaskForm{
		Content: string(args.Peek("content")),
		DueDate: string(args.Peek("due_date")),
	}
}

type ListQuery struct {
	Filter string
	Sort   string
	Search string
}

func ParseListQuery(args *fasthttp.Args) ListQuery {
	query := ListQuery{
		Filter: string(args.Peek("filter")),
		Sort:   string(args.Peek("sort")),
		Search: string(args.Peek("search")),
	}
	if query.Filter == "" {
		query.Filter = "all"
	}
	if query.Sort == "" {
		query.Sort = "date_desc"
	}
	return query
}
