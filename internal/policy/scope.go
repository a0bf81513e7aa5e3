package policy

// FilterVisible оставляет записи, которые caller может видеть (правило view).
// Каждая запись проверяется ровно один раз, порядок входа сохраняется.
func FilterVisible[T any](h OrgHierarchy, caller Caller, items []T, ownerOf func(T) Owner) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if CanAccessTodo(h, caller, ownerOf(item), ActionView) {
			out = append(out, item)
		}
	}
	return out
}
