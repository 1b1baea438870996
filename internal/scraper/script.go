package scraper

// extractScript runs inside the page. It returns [[id, nickname, text], ...]
// for every message node in document order. A missing or invalid container
// falls back to the whole document and missing sub-nodes yield "", but an
// invalid message selector throws so the caller sees the failed poll.
const extractScript = `(containerSel, eachSel, nicknameSel, textSel) => {
	const pick = (root, sel) => {
		if (!sel) return null;
		try {
			return root.querySelector(sel);
		} catch (e) {
			return null;
		}
	};
	const read = (node) => node ? (node.innerText || node.textContent || '').trim() : '';

	const root = pick(document, containerSel) || document;
	const now = Date.now();
	const out = [];
	root.querySelectorAll(eachSel).forEach((node, i) => {
		const nickname = read(pick(node, nicknameSel));
		const text = read(pick(node, textSel));
		if (!nickname && !text) return;
		const id = node.getAttribute('data-message-id') || node.id || [now, i, nickname, text].join('-');
		out.push([id, nickname, text]);
	});
	return out;
}`
