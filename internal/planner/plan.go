package planner

// Plan expands validated intents into primitive write instructions. It is
// total over validated input: every invalidity is caught by Validate, so Plan
// raises no errors. Instruction order preserves intent order; a map merge fans
// out into one instruction per entry in the intent's (sorted) entry order.
func Plan(intents []Intent) []Instruction {
	instructions := make([]Instruction, 0, len(intents))
	for _, intent := range intents {
		switch intent.Op {
		case OpAssign:
			instructions = append(instructions, Instruction{
				Column: intent.Column,
				Action: ActionAssign,
				Value:  intent.Value,
			})
		case OpDelete:
			instructions = append(instructions, Instruction{
				Column: intent.Column,
				Action: ActionDeleteColumn,
			})
		case OpSetAdd:
			instructions = append(instructions, Instruction{
				Column: intent.Column,
				Action: ActionCollectionAdd,
				Value:  intent.Elements,
			})
		case OpSetRemove:
			instructions = append(instructions, Instruction{
				Column: intent.Column,
				Action: ActionCollectionRemove,
				Value:  intent.Elements,
			})
		case OpListAppend:
			instructions = append(instructions, Instruction{
				Column: intent.Column,
				Action: ActionListAppend,
				Value:  intent.Elements,
			})
		case OpListPrepend:
			instructions = append(instructions, Instruction{
				Column: intent.Column,
				Action: ActionListPrepend,
				Value:  intent.Elements,
			})
		case OpMapMerge:
			for _, entry := range intent.Entries {
				if entry.Value == nil {
					instructions = append(instructions, Instruction{
						Column: intent.Column,
						Action: ActionMapDeleteKey,
						MapKey: entry.Key,
					})
					continue
				}
				instructions = append(instructions, Instruction{
					Column: intent.Column,
					Action: ActionMapSet,
					MapKey: entry.Key,
					Value:  entry.Value,
				})
			}
		}
	}
	return instructions
}
